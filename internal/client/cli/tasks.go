package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
)

// commandStatus целевой статус для каждой команды смены статуса.
// reopen различает исходный статус: COMPLETED возвращается в IN_PROGRESS,
// CANCELLED в PENDING, как задано графом переходов.
var commandStatus = map[string]models.Status{
	"start":    models.StatusInProgress,
	"complete": models.StatusCompleted,
	"cancel":   models.StatusCancelled,
}

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	fields, err := parseFieldArgs(args)
	if err != nil {
		return err
	}

	if len(fields) == 0 {
		// Интерактивный режим: минимальный набор полей задачи
		for _, name := range []string{"patient", "task", "notes"} {
			value, err := c.io.ReadInput(fmt.Sprintf("%s: ", name))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			if value != "" {
				fields[name] = value
			}
		}
	}

	record, err := c.dataService.CreateTask(ctx, fields)
	if err != nil {
		return err
	}

	c.io.Printf("Task created: %s\n", record.ID)
	return nil
}

func (c *Cli) runList(ctx context.Context) error {
	records, err := c.dataService.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(records) == 0 {
		c.io.Println("No tasks found.")
		c.io.Println()
		c.io.Println("Use 'wardsync add' to create the first handover task.")
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	c.io.Printf("Found %d task(s):\n", len(records))
	c.io.Println()

	for i, record := range records {
		c.io.Printf("%d. [%s] %s\n", i+1, record.Status, record.ID)
		if task, ok := record.Fields["task"]; ok {
			c.io.Printf("   Task:    %s\n", task.Value)
		}
		if patient, ok := record.Fields["patient"]; ok {
			c.io.Printf("   Patient: %s\n", patient.Value)
		}
		c.io.Printf("   Updated: %s", record.UpdatedAt.Format(time.RFC3339))
		if record.SyncState != models.SyncStateSynced {
			c.io.Printf("  (%s)", record.SyncState)
		}
		c.io.Println()
		c.io.Println()
	}

	return nil
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing task id. Usage: wardsync get <id>")
	}

	record, err := c.dataService.GetTask(ctx, args[0])
	if err != nil {
		return err
	}

	c.io.Printf("ID:         %s\n", record.ID)
	c.io.Printf("Status:     %s\n", record.Status)
	c.io.Printf("Sync state: %s\n", record.SyncState)
	c.io.Printf("Created:    %s\n", record.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Updated:    %s by %s\n", record.UpdatedAt.Format(time.RFC3339), record.OriginNodeID)
	c.io.Printf("Clock:      %s\n", record.Clock.String())
	c.io.Println()

	names := make([]string, 0, len(record.Fields))
	for name := range record.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fv := record.Fields[name]
		c.io.Printf("%-10s %s\n", name+":", fv.Value)
	}

	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: wardsync edit <id> field=value ...")
	}

	fields, err := parseFieldArgs(args[1:])
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no field changes given")
	}

	record, err := c.dataService.UpdateTask(ctx, args[0], fields)
	if err != nil {
		return err
	}

	c.io.Printf("Task updated: %s\n", record.ID)
	return nil
}

func (c *Cli) runChangeStatus(ctx context.Context, args []string, command string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing task id. Usage: wardsync %s <id>", command)
	}
	id := args[0]

	target, ok := commandStatus[command]
	if !ok {
		// reopen: цель зависит от текущего статуса
		record, err := c.dataService.GetTask(ctx, id)
		if err != nil {
			return err
		}
		switch record.Status {
		case models.StatusCompleted:
			target = models.StatusInProgress
		case models.StatusCancelled:
			target = models.StatusPending
		default:
			return fmt.Errorf("task is %s, only completed or cancelled tasks can be reopened", record.Status)
		}
	}

	record, err := c.dataService.ChangeStatus(ctx, id, target)
	if err != nil {
		return err
	}

	c.io.Printf("Task %s is now %s\n", record.ID, record.Status)
	return nil
}

func (c *Cli) runConflicts(ctx context.Context) error {
	records, err := c.dataService.ListConflicted(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conflicted tasks: %w", err)
	}

	if len(records) == 0 {
		c.io.Println("No tasks require manual review.")
		return nil
	}

	c.io.Printf("%d task(s) pinned for manual review:\n", len(records))
	c.io.Println()

	for _, record := range records {
		c.io.Printf("[%s] %s\n", record.Status, record.ID)
		if task, ok := record.Fields["task"]; ok {
			c.io.Printf("   Task:  %s\n", task.Value)
		}
		c.io.Printf("   Clock: %s\n", record.Clock.String())
		c.io.Println()
	}

	c.io.Println("Resolve a task by editing it or changing its status:")
	c.io.Println("the new revision supersedes both conflicting versions.")

	return nil
}

// parseFieldArgs разбирает аргументы вида field=value
func parseFieldArgs(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid argument %q, expected field=value", arg)
		}
		if name == "" {
			return nil, fmt.Errorf("invalid argument %q, field name is empty", arg)
		}
		fields[name] = value
	}
	return fields, nil
}
