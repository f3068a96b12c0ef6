package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a bookshelf.json configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	// Refuse to clobber an existing config
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in this directory", config.ConfigFileName)
	}

	if err := config.Save(configPath, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s\n", config.ConfigFileName)
	fmt.Println("\nEdit it to point at your server, then run 'bookshelf login'.")

	return nil
}
