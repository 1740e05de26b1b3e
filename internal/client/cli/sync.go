package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkuzmenko/wardsync/internal/client/session"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	token, err := c.authService.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	result, err := c.session.Run(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSyncDeferred) {
			c.io.Println("Server is unreachable, sync deferred.")
			c.io.Println("Local changes are safe in the operation log and will be pushed on the next cycle.")
			return nil
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println("Synchronization completed.")
	c.io.Println()
	c.io.Printf("Pushed operations:  %d\n", result.PushedOps)
	c.io.Printf("Pulled records:     %d\n", result.PulledRecords)
	c.io.Printf("Merged records:     %d\n", result.MergedRecords)
	if result.Conflicts > 0 {
		c.io.Printf("Conflicts:          %d (run 'wardsync conflicts' to review)\n", result.Conflicts)
	}
	if result.Quarantined > 0 {
		c.io.Printf("Quarantined:        %d invalid operation(s)\n", result.Quarantined)
	}

	return nil
}
