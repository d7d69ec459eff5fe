package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <key> [key...]",
	Short: "Delete one or more records",
	Long: `Delete records by key. With a single key the key must exist; with
several keys, absent ones are ignored and all matches are removed in one
file rewrite.

Examples:
  moo delete user1
  moo delete user1 user2 user3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		table := client.GetTable()
		if len(args) == 1 {
			if err := table.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		}

		if err := table.DeleteMany(args); err != nil {
			return err
		}
		fmt.Printf("deleted up to %d records\n", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
