package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/moodb/moodb/pkg/store"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Insert a record, or update it with --update",
	Long: `Insert a new record. Inserting an existing key is an error; pass
--update to change the value of an existing record instead.

With --gen-key a fresh KSUID is used as the key and only the value is given.

Examples:
  moo set user1 alice
  moo set --update user1 bob
  moo set --gen-key "some value"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFrom(cmd)
		if err != nil {
			return err
		}

		genKey, _ := cmd.Flags().GetBool("gen-key")
		update, _ := cmd.Flags().GetBool("update")

		var key, value string
		switch {
		case genKey:
			if len(args) != 1 {
				return fmt.Errorf("--gen-key takes exactly one argument, the value")
			}
			key, value = ksuid.New().String(), args[0]
		default:
			if len(args) != 2 {
				return fmt.Errorf("set takes a key and a value")
			}
			key, value = args[0], args[1]
		}

		table := client.GetTable()
		if update {
			if err := table.Update(key, value); err != nil {
				return err
			}
			fmt.Printf("updated %s\n", key)
			return nil
		}

		if err := table.Insert(key, value); err != nil {
			if store.IsAlreadyExists(err) {
				return fmt.Errorf("%w (hint: pass --update)", err)
			}
			return err
		}
		fmt.Printf("inserted %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().Bool("update", false, "Update an existing record instead of inserting")
	setCmd.Flags().Bool("gen-key", false, "Generate a KSUID key; the single argument is the value")
}
