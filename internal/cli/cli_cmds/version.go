package cli_cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/internal"
	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// NewVersion creates the version command
func NewVersion(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), internal.FullVersion())
		},
	}
}
