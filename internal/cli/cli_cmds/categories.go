package cli_cmds

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// NewCategories creates the category registry command group
func NewCategories(params *cli.CmdParams) *cobra.Command {
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the income/expense category vocabulary",
		Long:  `List, create, deactivate and seed the controlled category vocabulary used by every ledger entry.`,
	}

	categoriesCmd.AddCommand(newCategoriesList(params))
	categoriesCmd.AddCommand(newCategoriesCreate(params))
	categoriesCmd.AddCommand(newCategoriesDeactivate(params))
	categoriesCmd.AddCommand(newCategoriesSeed(params))

	return categoriesCmd
}

func newCategoriesList(params *cli.CmdParams) *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind *models.CategoryKind
			if kindFlag != "" {
				k := models.CategoryKind(kindFlag)
				kind = &k
			}

			categories, err := params.Accounting.ListCategories(context.Background(), kind)
			if err != nil {
				return err
			}

			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Kind, c.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "filter by kind (income|expense)")
	return cmd
}

func newCategoriesCreate(params *cli.CmdParams) *cobra.Command {
	var kindFlag, color, icon, actor string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new active category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := params.Accounting.CreateCategory(context.Background(), actor,
				args[0], models.CategoryKind(kindFlag), color, icon)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s category %q (%s)\n", category.Kind, category.Name, category.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "category kind (income|expense)")
	cmd.Flags().StringVar(&color, "color", "", "presentation color")
	cmd.Flags().StringVar(&icon, "icon", "", "presentation icon")
	cmd.Flags().StringVar(&actor, "actor", "", "acting operator id")
	cmd.MarkFlagRequired("kind")
	return cmd
}

func newCategoriesDeactivate(params *cli.CmdParams) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a category",
		Long:  `Flip a category inactive. Historical entries keep aggregating under its name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.Accounting.DeactivateCategory(context.Background(), actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated category %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "acting operator id")
	return cmd
}

func newCategoriesSeed(params *cli.CmdParams) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the default category vocabulary (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.Accounting.EnsureDefaultCategories(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Default categories in place")
			return nil
		},
	}
}
