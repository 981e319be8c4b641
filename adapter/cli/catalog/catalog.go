package catalog

import (
	"github.com/spf13/cobra"
)

// Cmd is the catalog command group
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect activity catalogs",
	Long:  `List the activity catalogs sessions are planned from.`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
