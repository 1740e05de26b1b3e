package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vkuzmenko/wardsync/internal/client/storage"
)

func (c *Cli) runEnroll(ctx context.Context, args []string) error {
	c.io.Println("=== Device Enrollment ===")
	c.io.Println()

	if _, err := c.authService.Credentials(ctx); err == nil {
		return fmt.Errorf("device is already enrolled. Remove the local database to re-enroll")
	} else if !errors.Is(err, storage.ErrNotEnrolled) {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}

	var deviceName string
	if len(args) > 0 {
		deviceName = args[0]
	} else {
		name, err := c.io.ReadInput("Device name (e.g. ward-3-tablet): ")
		if err != nil {
			return fmt.Errorf("failed to read device name: %w", err)
		}
		deviceName = name
	}
	if deviceName == "" {
		return fmt.Errorf("device name cannot be empty")
	}

	// Ключ регистрации выдает администратор, на экране не отображается
	enrollmentKey, err := c.io.ReadPassword("Enrollment key: ")
	if err != nil {
		return fmt.Errorf("failed to read enrollment key: %w", err)
	}

	creds, err := c.authService.Enroll(ctx, deviceName, enrollmentKey)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Device enrolled successfully.")
	c.io.Printf("Device ID: %s\n", creds.DeviceID)
	c.io.Println()
	c.io.Println("Run 'wardsync daemon' to start background synchronization.")

	return nil
}
