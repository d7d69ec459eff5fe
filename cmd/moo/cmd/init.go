package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moodb/moodb/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a starter config file",
	Long: `Write a YAML config file with the default options, ready to edit.

Example:
  moo init moo.yaml --db-dir ./data --debug-mode`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		force, _ := cmd.Flags().GetBool("force")

		if config.ConfigExists(path) && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		if dbDir, _ := cmd.Flags().GetString("db-dir"); dbDir != "" {
			cfg.DBDir = dbDir
		}
		if debugMode, _ := cmd.Flags().GetBool("debug-mode"); debugMode {
			cfg.DebugMode = true
		}
		if level, _ := cmd.Flags().GetString("debug-level"); level != "" {
			cfg.DebugLevel = level
		}

		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("db-dir", "", "Directory under which table files live")
	initCmd.Flags().Bool("debug-mode", false, "Enable the debug sink")
	initCmd.Flags().String("debug-level", "", "Minimum debug level: info, warning or error")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
