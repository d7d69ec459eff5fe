package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moodb/moodb/pkg/store"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records in the table",
	Long: `List every record in the table in storage order.

Example:
  moo -t accounts list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		records, err := client.GetTable().GetAll()
		if err != nil {
			if store.IsNotFound(err) {
				fmt.Println("(empty)")
				return nil
			}
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, record := range records {
			fmt.Fprintf(w, "%s\t%s\n", record.Key, record.Value)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
