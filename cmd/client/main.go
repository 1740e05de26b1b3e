package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vkuzmenko/wardsync/internal/client/api"
	"github.com/vkuzmenko/wardsync/internal/client/auth"
	"github.com/vkuzmenko/wardsync/internal/client/cli"
	"github.com/vkuzmenko/wardsync/internal/client/data"
	"github.com/vkuzmenko/wardsync/internal/client/iocli"
	"github.com/vkuzmenko/wardsync/internal/client/scheduler"
	"github.com/vkuzmenko/wardsync/internal/client/session"
	"github.com/vkuzmenko/wardsync/internal/client/storage/boltdb"
	"github.com/vkuzmenko/wardsync/internal/merge"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "wardsync-client.db", "Path to local database")
	syncInterval := flag.Duration("sync-interval", scheduler.DefaultInterval, "Background sync interval (daemon mode)")
	maxPendingOps := flag.Int("max-pending-ops", 10000, "Operation log bound, 0 disables backpressure")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	// Демон живет до SIGINT/SIGTERM, разовые команды до завершения
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	boltStorage, err := boltdb.New(ctx, *dbPath, *maxPendingOps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	nodeID, err := boltStorage.NodeID(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get node id: %v\n", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(*serverURL)
	authService := auth.NewService(apiClient, boltStorage, logger)
	dataService := data.NewService(boltStorage, boltStorage, boltStorage, logger)

	syncSession := session.NewSession(session.Config{
		Transport:  apiClient,
		Engine:     merge.NewEngine(nodeID, merge.NewResolver()),
		OpLog:      boltStorage,
		Records:    boltStorage,
		Transactor: boltStorage,
		AuditSink:  boltStorage,
		Logger:     logger,
		DeviceID:   nodeID,
	})

	sched := scheduler.New(scheduler.Config{
		Session:  syncSession,
		Tokens:   authService.AccessToken,
		Logger:   logger,
		Interval: *syncInterval,
	})

	c := cli.New(iocli.NewStdio(), authService, dataService, syncSession, sched, boltStorage)
	c.Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("WardSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
