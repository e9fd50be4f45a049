package cli_cmds

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// NewStore creates the store diagnostics command group
func NewStore(params *cli.CmdParams) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Store binding diagnostics",
		Long:  `Inspect and force the primary/fallback store binding. The binding never switches on its own mid-session.`,
	}

	storeCmd.AddCommand(newStoreStatus(params))
	storeCmd.AddCommand(newStoreForcePrimary(params))
	storeCmd.AddCommand(newStoreForceFallback(params))

	return storeCmd
}

func newStoreStatus(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the bound backend and probe it",
		RunE: func(cmd *cobra.Command, args []string) error {
			bound := params.Binding.Store()
			fmt.Fprintf(cmd.OutOrStdout(), "Bound: %s\n", bound.Name())
			if params.Binding.Degraded() {
				fmt.Fprintln(cmd.OutOrStdout(), "Mode: degraded (fallback bound while a primary is configured)")
			}

			ctx, cancel := context.WithTimeout(context.Background(), params.Config.StoreTimeout())
			defer cancel()
			if err := bound.Probe(ctx); err != nil {
				return fmt.Errorf("probe failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Probe: ok")
			return nil
		},
	}
}

func newStoreForcePrimary(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "force-primary",
		Short: "Force the binding to the primary backend (diagnostic)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.Binding.ForcePrimary(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bound: %s\n", params.Binding.Store().Name())
			return nil
		},
	}
}

func newStoreForceFallback(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "force-fallback",
		Short: "Force the binding to the fallback backend (diagnostic)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.Binding.ForceFallback(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bound: %s\n", params.Binding.Store().Name())
			return nil
		},
	}
}
