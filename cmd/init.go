package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize yumako configuration",
	Long: `Create a default configuration file.

Creates platform-appropriate config files:
  Linux/macOS: ~/.yumako.yaml
  Windows:     %USERPROFILE%\.yumako.yaml

Examples:
  # Create default config (won't overwrite existing)
  yumako init

  # Force overwrite existing config
  yumako init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(home, ".yumako.yaml")

	if err := createFileIfNotExists(configPath, generateDefaultConfig(), initForce); err != nil {
		return err
	}

	fmt.Println("Initialized yumako configuration:")
	fmt.Printf("  Config: %s\n", configPath)
	fmt.Printf("\nEdit %s to customize your settings.\n", configPath)

	return nil
}

func generateDefaultConfig() string {
	return `# yumako configuration

# Default output format: text, json, csv
output: text

# Where 'yumako state' keeps its data
# state_file: .state

# Where 'yumako store' keeps its documents, and how they are encoded
# store_dir: .yumako-store
# store_format: json

# Where 'yumako cached' keeps command output
# cache_dir: .yumako-cache

# Log level: debug, info, warn, error
# log_level: info
`
}

func createFileIfNotExists(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("  %s already exists (use --force to overwrite)\n", path)
			return nil
		}
	}

	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("  Created %s\n", path)
	return nil
}
