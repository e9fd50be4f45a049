package cli_cmds

import (
	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// GeneratePalette assembles the full command palette for the root command
func GeneratePalette(params *cli.CmdParams) []*cobra.Command {
	return []*cobra.Command{
		NewCategories(params),
		NewIncome(params),
		NewExpense(params),
		NewEntries(params),
		NewReport(params),
		NewStore(params),
		NewVersion(params),
	}
}
