package cli

import (
	"context"
	"fmt"

	"github.com/vkuzmenko/wardsync/internal/client/scheduler"
)

// runDaemon запускает периодическую фоновую синхронизацию.
// Блокируется до отмены контекста (Ctrl+C в main).
func (c *Cli) runDaemon(ctx context.Context) error {
	if _, err := c.authService.Credentials(ctx); err != nil {
		return fmt.Errorf("device must be enrolled before running the daemon: %w", err)
	}

	c.io.Println("Background synchronization started. Press Ctrl+C to stop.")

	go c.reportStatus(ctx)

	if err := c.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("scheduler stopped: %w", err)
	}

	c.io.Println("Background synchronization stopped.")
	return nil
}

// reportStatus печатает сигналы планировщика по мере поступления
func (c *Cli) reportStatus(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case status := <-c.scheduler.Status():
			switch status.Kind {
			case scheduler.SyncCompleted:
				if status.Result != nil && (status.Result.PushedOps > 0 || status.Result.PulledRecords > 0) {
					c.io.Printf("sync: pushed %d, pulled %d, conflicts %d\n",
						status.Result.PushedOps,
						status.Result.PulledRecords,
						status.Result.Conflicts)
				}
			case scheduler.SyncDeferred:
				c.io.Println("sync: server unreachable, will retry")
			case scheduler.SyncFailed:
				c.io.Printf("sync: failed: %v\n", status.Err)
			case scheduler.SyncEngineDegraded:
				c.io.Printf("sync: repeated failures, engine degraded: %v\n", status.Err)
			}
		}
	}
}
