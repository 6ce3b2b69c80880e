package cmd

import (
	"fmt"

	"m77ag-backend/utils"

	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "gen-secret",
	Short: "Print a random JWT_SECRET value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.GenerateJWTSecret())
		return err
	},
}
