package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dropCmd represents the drop command
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the table file itself",
	Long: `Delete the table file from the database directory. Unlike reset,
the file is removed entirely.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		if err := client.DeleteTable(); err != nil {
			return err
		}
		fmt.Println("table dropped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
}
