package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all records, keeping the table file",
	Long: `Clear every record and truncate the table file to zero bytes. The
file keeps existing; use drop to remove it entirely.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		if err := client.ResetTable(); err != nil {
			return err
		}
		fmt.Println("table reset")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
