package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/category"
	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/model"
)

func addCmd() *cobra.Command {
	var (
		categoryFlag string
		typeFlag     string
		dateFlag     string
		note         string
	)

	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record an expense by hand",
		Long: `Record a single expense without scanning. The category and type are
normalized against the canonical sets; anything unrecognized falls back
to "Khác" / "Phát sinh".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			normalizer := category.NewNormalizer()
			item := model.NewManualItem(args[0], amount,
				normalizer.Normalize(categoryFlag),
				normalizer.NormalizeType(typeFlag))

			expense := item.ToExpense(date)
			expense.Note = note
			if err := expense.Validate(); err != nil {
				return err
			}

			entry := model.SyncEntry{ExpenseID: expense.ID, Op: model.OpCreate, Expense: expense}
			if err := store.ApplyLocalMutation(ctx, entry); err != nil {
				return fmt.Errorf("failed to record expense: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Recorded %s  %s  (%s, %s)",
				expense.Description, formatAmount(expense.Amount), expense.Category, expense.Type)))
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "expense category (default Khác)")
	cmd.Flags().StringVar(&typeFlag, "type", "", "spending type: Phải chi, Phát sinh, Lãng phí (default Phát sinh)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")

	return cmd
}
