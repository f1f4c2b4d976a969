package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

var destinationCmd = &cobra.Command{
	Use:   "destination ROLE",
	Short: "Print where a role lands after login",
	Long:  `Prints the dashboard path for ROLE. Unrecognized roles land on the user dashboard.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Println(auth.DestinationFor(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(destinationCmd)
}
