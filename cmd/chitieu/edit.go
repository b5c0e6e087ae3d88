package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/category"
	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/model"
)

func editCmd() *cobra.Command {
	var (
		description  string
		amountFlag   string
		categoryFlag string
		typeFlag     string
		dateFlag     string
		note         string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an expense",
		Long:  `Update fields of an existing expense. Unspecified fields keep their value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if description == "" && amountFlag == "" && categoryFlag == "" &&
				typeFlag == "" && dateFlag == "" && !cmd.Flags().Changed("note") {
				return fmt.Errorf("nothing to change: specify at least one field flag")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expense, err := store.GetExpenseByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load expense %s: %w", args[0], err)
			}

			normalizer := category.NewNormalizer()
			if description != "" {
				expense.Description = description
			}
			if amountFlag != "" {
				amount, err := parseAmount(amountFlag)
				if err != nil {
					return err
				}
				expense.Amount = amount
			}
			if categoryFlag != "" {
				expense.Category = normalizer.Normalize(categoryFlag)
			}
			if typeFlag != "" {
				expense.Type = normalizer.NormalizeType(typeFlag)
			}
			if dateFlag != "" {
				date, err := parseDate(dateFlag)
				if err != nil {
					return err
				}
				expense.Date = date
			}
			if cmd.Flags().Changed("note") {
				expense.Note = note
			}

			if err := expense.Validate(); err != nil {
				return err
			}

			entry := model.SyncEntry{ExpenseID: expense.ID, Op: model.OpUpdate, Expense: *expense}
			if err := store.ApplyLocalMutation(ctx, entry); err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Updated %s  %s  (%s, %s)",
				expense.Description, formatAmount(expense.Amount), expense.Category, expense.Type)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "new amount")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "new category")
	cmd.Flags().StringVar(&typeFlag, "type", "", "new spending type")
	cmd.Flags().StringVar(&dateFlag, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&note, "note", "", "new note (pass empty to clear)")

	return cmd
}
