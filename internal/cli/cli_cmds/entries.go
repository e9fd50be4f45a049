package cli_cmds

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/domain/usecases"
	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// NewIncome creates the income command group
func NewIncome(params *cli.CmdParams) *cobra.Command {
	incomeCmd := &cobra.Command{
		Use:   "income",
		Short: "Record income entries",
	}
	incomeCmd.AddCommand(newIncomeAdd(params))
	return incomeCmd
}

func newIncomeAdd(params *cli.CmdParams) *cobra.Command {
	var date, amount, category, description, payment, actor string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = params.Accounting.Today()
			}
			entry, err := params.Accounting.AddIncome(context.Background(), usecases.AddEntryInput{
				Date:          date,
				Amount:        amount,
				Category:      category,
				Description:   description,
				PaymentMethod: models.PaymentMethod(payment),
				ActorID:       actor,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded income %s: %s on %s (%s)\n",
				entry.ID, models.FormatAmount(entry.Amount), entry.Date, entry.Category)
			return nil
		},
	}
	addEntryFlags(cmd, &date, &amount, &category, &description, &payment, &actor)
	return cmd
}

// NewExpense creates the expense command group
func NewExpense(params *cli.CmdParams) *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record expense entries",
	}
	expenseCmd.AddCommand(newExpenseAdd(params))
	return expenseCmd
}

func newExpenseAdd(params *cli.CmdParams) *cobra.Command {
	var date, amount, category, description, payment, supplier, actor string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = params.Accounting.Today()
			}
			entry, err := params.Accounting.AddExpense(context.Background(), usecases.AddEntryInput{
				Date:          date,
				Amount:        amount,
				Category:      category,
				Description:   description,
				PaymentMethod: models.PaymentMethod(payment),
				Supplier:      supplier,
				ActorID:       actor,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded expense %s: %s on %s (%s)\n",
				entry.ID, models.FormatAmount(entry.Amount), entry.Date, entry.Category)
			return nil
		},
	}
	addEntryFlags(cmd, &date, &amount, &category, &description, &payment, &actor)
	cmd.Flags().StringVar(&supplier, "supplier", "", "supplier name")
	return cmd
}

func addEntryFlags(cmd *cobra.Command, date, amount, category, description, payment, actor *string) {
	cmd.Flags().StringVar(date, "date", "", "entry date YYYY-MM-DD (default today in the shop timezone)")
	cmd.Flags().StringVar(amount, "amount", "", "amount, e.g. 1531.75 or 1.531,75")
	cmd.Flags().StringVar(category, "category", "", "category name")
	cmd.Flags().StringVar(description, "description", "", "free-text description")
	cmd.Flags().StringVar(payment, "payment", string(models.PaymentMethodCash), "payment method (Efectivo|Tarjeta|Transferencia|Otro)")
	cmd.Flags().StringVar(actor, "actor", "", "acting operator id")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("category")
}

// NewEntries creates the entries command group
func NewEntries(params *cli.CmdParams) *cobra.Command {
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Inspect and manage ledger entries",
	}
	entriesCmd.AddCommand(newEntriesList(params))
	entriesCmd.AddCommand(newEntriesUpdate(params))
	entriesCmd.AddCommand(newEntriesDelete(params))
	return entriesCmd
}

func newEntriesList(params *cli.CmdParams) *cobra.Command {
	var from, to, kindFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				to = params.Accounting.Today()
			}
			if from == "" {
				from = to
			}

			var kind *models.EntryKind
			if kindFlag != "" {
				k := models.EntryKind(kindFlag)
				kind = &k
			}

			entries, err := params.Accounting.ListEntries(context.Background(), kind, from, to)
			if err != nil {
				return err
			}

			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Date, e.Kind, models.FormatAmount(e.Amount), e.Category, e.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start YYYY-MM-DD (default --to)")
	cmd.Flags().StringVar(&to, "to", "", "range end YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "filter by kind (income|expense)")
	return cmd
}

func newEntriesUpdate(params *cli.CmdParams) *cobra.Command {
	var kindFlag, actor string
	var date, amount, category, description, payment, supplier string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch an existing entry (id and kind are immutable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := models.EntryPatch{}
			if cmd.Flags().Changed("date") {
				patch.Date = &date
			}
			if cmd.Flags().Changed("amount") {
				patch.Amount = amount
			}
			if cmd.Flags().Changed("category") {
				patch.Category = &category
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("payment") {
				m := models.PaymentMethod(payment)
				patch.PaymentMethod = &m
			}
			if cmd.Flags().Changed("supplier") {
				patch.Supplier = &supplier
			}

			entry, err := params.Accounting.UpdateEntry(context.Background(), actor, args[0],
				models.EntryKind(kindFlag), patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s entry %s: %s on %s (%s)\n",
				entry.Kind, entry.ID, models.FormatAmount(entry.Amount), entry.Date, entry.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "entry kind (income|expense)")
	cmd.Flags().StringVar(&date, "date", "", "new entry date YYYY-MM-DD")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&category, "category", "", "new category name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&payment, "payment", "", "new payment method")
	cmd.Flags().StringVar(&supplier, "supplier", "", "new supplier (expense only)")
	cmd.Flags().StringVar(&actor, "actor", "", "acting operator id")
	cmd.MarkFlagRequired("kind")
	return cmd
}

func newEntriesDelete(params *cli.CmdParams) *cobra.Command {
	var kindFlag, actor string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry (terminal, no undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := params.Accounting.DeleteEntry(context.Background(), actor, args[0], models.EntryKind(kindFlag))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s entry %s\n", kindFlag, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "entry kind (income|expense)")
	cmd.Flags().StringVar(&actor, "actor", "", "acting operator id")
	cmd.MarkFlagRequired("kind")
	return cmd
}
