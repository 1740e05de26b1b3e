package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Device Status ===")
	c.io.Println()

	creds, err := c.authService.Credentials(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotEnrolled) {
			c.io.Println("Status: Not enrolled")
			c.io.Println()
			c.io.Println("Run 'wardsync enroll' to enroll this device.")
			return nil
		}
		return fmt.Errorf("failed to get credentials: %w", err)
	}

	c.io.Println("Status: Enrolled")
	c.io.Printf("Device ID:   %s\n", creds.DeviceID)
	c.io.Printf("Device name: %s\n", creds.DeviceName)
	c.io.Printf("Enrolled at: %s\n", creds.EnrolledAt.Format(time.RFC3339))
	c.io.Println()

	lastSync, err := c.meta.GetLastSyncTime(ctx)
	if err != nil {
		c.io.Printf("Warning: failed to get last sync time: %v\n", err)
	} else if lastSync.IsZero() {
		c.io.Println("Last sync: never")
	} else {
		c.io.Printf("Last sync: %s (%s ago)\n",
			lastSync.Format(time.RFC3339),
			time.Since(lastSync).Round(time.Second))
	}

	pending, err := c.session.PendingCount(ctx)
	if err != nil {
		c.io.Printf("Warning: failed to get pending operation count: %v\n", err)
	} else if pending > 0 {
		c.io.Printf("Pending: %d operation(s) waiting to be pushed\n", pending)
		c.io.Println("Run 'wardsync sync' to synchronize now.")
	} else {
		c.io.Println("Pending: the operation log is empty")
	}

	conflicted, err := c.dataService.ListConflicted(ctx)
	if err != nil {
		c.io.Printf("Warning: failed to list conflicted tasks: %v\n", err)
	} else if len(conflicted) > 0 {
		c.io.Println()
		c.io.Printf("%d task(s) require manual review. Run 'wardsync conflicts'.\n", len(conflicted))
	}

	return nil
}
