package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phamvy/chitieu/internal/cli"
	"github.com/phamvy/chitieu/internal/model"
)

func deleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Long: `Delete an expense. The record is shown before deletion and can be
restored with an immediate undo; after that the deletion syncs to the
backend like any other mutation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Snapshot before deleting so undo can restore it.
			expense, err := store.GetExpenseByID(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load expense %s: %w", args[0], err)
			}

			fmt.Printf("%s  %s  (%s, %s) on %s\n",
				expense.Description, formatAmount(expense.Amount),
				expense.Category, expense.Type, expense.Date.Format(dateLayout))

			if !force && !confirm("Delete this expense?") {
				fmt.Println("Deletion cancelled.")
				return nil
			}

			entry := model.SyncEntry{ExpenseID: expense.ID, Op: model.OpDelete}
			if err := store.ApplyLocalMutation(ctx, entry); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}
			fmt.Println(cli.SuccessStyle.Render("✓ Deleted"))

			// Undo window: re-enqueueing a create after the delete restores
			// the record. Queue order per expense guarantees the delete is
			// applied remotely before the create.
			if !force && confirm("Undo?") {
				restore := model.SyncEntry{ExpenseID: expense.ID, Op: model.OpCreate, Expense: *expense}
				if err := store.ApplyLocalMutation(ctx, restore); err != nil {
					return fmt.Errorf("failed to restore expense: %w", err)
				}
				fmt.Println(cli.SuccessStyle.Render("✓ Restored"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation and undo prompts")

	return cmd
}
