package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Eshhar121/ecommerce-frontend/internal/server"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the storefront's routes and their guards",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := pterm.TableData{{"METHOD", "PATH", "GUARD", "DESCRIPTION"}}
		for _, r := range server.Routes() {
			guard := r.Guard
			if guard == server.GuardNone {
				guard = "-"
			}
			table = append(table, []string{r.Method, r.Pattern, guard, r.Summary})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
