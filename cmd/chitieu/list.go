package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/service"
)

func listCmd() *cobra.Command {
	var (
		monthFlag    string
		categoryFlag string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Long:  `Display expenses for a month, newest first, with the month's total.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			period, err := parseMonth(monthFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{
				Start:    &period.Start,
				End:      &period.End,
				Category: categoryFlag,
				Limit:    limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.InfoStyle.Render("No expenses in this period."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Description"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("ID"))

			total := decimal.Zero
			for _, e := range expenses {
				total = total.Add(e.Amount)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Date.Format(dateLayout), e.Description, formatAmount(e.Amount),
					e.Category, e.Type, cli.SubtleStyle.Render(e.ID))
			}
			w.Flush()

			fmt.Printf("\nTotal: %s across %d expense(s)\n", formatAmount(total), len(expenses))

			pending, err := store.PendingCount(ctx)
			if err == nil && pending > 0 {
				fmt.Println(cli.SubtleStyle.Render(
					fmt.Sprintf("%d mutation(s) waiting to sync.", pending)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month to list (YYYY-MM, default current)")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "filter by category")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = no limit)")

	return cmd
}
