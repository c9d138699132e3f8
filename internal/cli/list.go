package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List craftable items by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.OutOrStdout(), jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the listing as JSON")

	return cmd
}

func (c *CLI) runList(w io.Writer, jsonOut bool) error {
	db, err := c.loadDatabase()
	if err != nil {
		return err
	}
	cats := db.Categories()

	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cats)
	}

	for i, cat := range cats {
		if i > 0 {
			printNewline(w)
		}
		printTitle(w, "%s (%d)", cat.Name, len(cat.Items))
		for _, e := range cat.Items {
			printKeyValue(w, e.ID, e.Name)
		}
	}
	return nil
}
