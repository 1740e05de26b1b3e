package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vkuzmenko/wardsync/internal/client/auth"
	"github.com/vkuzmenko/wardsync/internal/client/data"
	"github.com/vkuzmenko/wardsync/internal/client/iocli"
	"github.com/vkuzmenko/wardsync/internal/client/scheduler"
	"github.com/vkuzmenko/wardsync/internal/client/session"
	"github.com/vkuzmenko/wardsync/internal/client/storage"
)

// Cli связывает команды терминала с сервисами устройства
type Cli struct {
	io          iocli.IO
	authService auth.Service
	dataService *data.Service
	session     session.Session
	scheduler   *scheduler.Scheduler
	meta        storage.MetadataStorage
}

// New создает новый CLI
func New(io iocli.IO, authService auth.Service, dataService *data.Service, syncSession session.Session, sched *scheduler.Scheduler, meta storage.MetadataStorage) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		dataService: dataService,
		session:     syncSession,
		scheduler:   sched,
		meta:        meta,
	}
}

// Run выполняет команду и завершает процесс с кодом 1 при ошибке
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "enroll":
		err = c.runEnroll(ctx, args)
	case "status":
		err = c.runStatus(ctx)
	case "sync":
		err = c.runSync(ctx)
	case "add":
		err = c.runAdd(ctx, args)
	case "list":
		err = c.runList(ctx)
	case "get":
		err = c.runGet(ctx, args)
	case "edit":
		err = c.runEdit(ctx, args)
	case "start":
		err = c.runChangeStatus(ctx, args, command)
	case "complete":
		err = c.runChangeStatus(ctx, args, command)
	case "cancel":
		err = c.runChangeStatus(ctx, args, command)
	case "reopen":
		err = c.runChangeStatus(ctx, args, command)
	case "conflicts":
		err = c.runConflicts(ctx)
	case "daemon":
		err = c.runDaemon(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Println("WardSync Client")
	fmt.Println()
	fmt.Println("Offline-first shift handover tasks for ward tablets.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wardsync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version            Show version information")
	fmt.Println("  --server URL         Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH            Path to local database (default: wardsync-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  enroll [NAME]        Enroll this device using the enrollment key")
	fmt.Println("  status               Show device and synchronization status")
	fmt.Println("  sync                 Run a synchronization cycle now")
	fmt.Println("  daemon               Run periodic background synchronization")
	fmt.Println("  add field=value ...  Create a handover task")
	fmt.Println("  list                 List handover tasks")
	fmt.Println("  get <id>             Show full task details")
	fmt.Println("  edit <id> field=value ...")
	fmt.Println("                       Edit task fields")
	fmt.Println("  start <id>           Mark task in progress")
	fmt.Println("  complete <id>        Mark task completed")
	fmt.Println("  cancel <id>          Cancel task")
	fmt.Println("  reopen <id>          Reopen a completed or cancelled task")
	fmt.Println("  conflicts            List tasks pinned for manual review")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  wardsync enroll ward-3-tablet")
	fmt.Println("  wardsync add patient='bed 12' task='check vitals at 18:00'")
	fmt.Println("  wardsync complete b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5")
	fmt.Println("  wardsync --server https://sync.clinic.local daemon")
}
