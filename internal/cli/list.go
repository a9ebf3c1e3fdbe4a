package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var deleteID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List layouts in the history store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if deleteID != "" {
				if err := st.Delete(ctx, deleteID); err != nil {
					return fmt.Errorf("delete %s: %w", deleteID, err)
				}
				printSuccess("Deleted %s", deleteID)
				return nil
			}

			items, err := st.List(ctx)
			if err != nil {
				return fmt.Errorf("list layouts: %w", err)
			}
			if len(items) == 0 {
				printInfo("No stored layouts")
				printNextStep("Store one", appName+" layout world.yaml --save")
				return nil
			}
			fmt.Fprintln(stdout, summaryTable(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&deleteID, "delete", "", "remove the layout with this id")

	return cmd
}
