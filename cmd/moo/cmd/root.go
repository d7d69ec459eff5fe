package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moodb/moodb/pkg/config"
	"github.com/moodb/moodb/pkg/store"
)

type clientKey struct{}

// clientFrom pulls the opened client out of the command context.
func clientFrom(cmd *cobra.Command) (*store.Client[string], error) {
	client, ok := cmd.Context().Value(clientKey{}).(*store.Client[string])
	if !ok {
		return nil, fmt.Errorf("store client not found in context")
	}
	return client, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moo",
	Short: "MooDB - embedded typed key-value store",
	Long: `MooDB is an embedded key-value store with per-table file persistence.
Each table is a single JSON file; every mutation rewrites the file in full.
The moo CLI operates on string-valued tables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init only writes a config file; it does not need an open table.
		if cmd.Name() == "init" || cmd.Name() == "help" {
			return nil
		}

		configPath, _ := cmd.Flags().GetString("config")
		cfg := config.DefaultConfig()
		if configPath != "" {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
			cfg.DebugMode = true
		}

		dir, _ := cmd.Flags().GetString("dir")
		table, _ := cmd.Flags().GetString("table")

		client, err := store.Open[string](table, dir, cfg)
		if err != nil {
			return fmt.Errorf("failed to open table %s: %w", table, err)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), clientKey{}, client))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return nil
		}
		return client.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Database directory (defaults to the configured db_dir)")
	rootCmd.PersistentFlags().StringP("table", "t", "moo", "Table name")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable the debug log")
}
