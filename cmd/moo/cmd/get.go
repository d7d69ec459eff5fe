package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the value stored under a key",
	Long: `Get the value stored under a key.

Example:
  moo -t accounts get user1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		value, err := client.GetTable().Get(args[0])
		if err != nil {
			return err
		}

		fmt.Println(value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
