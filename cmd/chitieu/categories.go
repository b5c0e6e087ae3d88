package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/category"
	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/service"
)

func categoriesCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories by usage",
		Long: `Display the canonical categories ordered by how often they were used in
the given month, most used first. Unused categories follow alphabetically.`,
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
				Start: &period.Start,
				End:   &period.End,
			})
			if err != nil {
				return fmt.Errorf("failed to load period expenses: %w", err)
			}

			counts := make(map[string]int, len(expenses))
			for _, e := range expenses {
				counts[e.Category]++
			}

			ranked := category.Rank(category.Canonical(), expenses)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n",
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Used"))
			for _, name := range ranked {
				used := fmt.Sprintf("%d", counts[name])
				if counts[name] == 0 {
					used = cli.SubtleStyle.Render("-")
				}
				fmt.Fprintf(w, "%s\t%s\n", name, used)
			}
			w.Flush()

			return nil
		},
	}

	cmd.AddCommand(typesCmd())
	cmd.Flags().StringVar(&monthFlag, "month", "", "usage month (YYYY-MM, default current)")

	return cmd
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List spending types",
		Run: func(_ *cobra.Command, _ []string) {
			for _, t := range category.CanonicalTypes() {
				suffix := ""
				if t == category.DefaultType {
					suffix = cli.SubtleStyle.Render("  (default)")
				}
				fmt.Printf("%s%s\n", t, suffix)
			}
		},
	}
}
