package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/service"
)

// dateLayout is how calendar days are stored. Expenses have no time-of-day.
const dateLayout = "2006-01-02"

// UpsertExpense writes a single expense into the projection, replacing any
// existing row with the same id.
func (s *SQLiteStore) UpsertExpense(ctx context.Context, expense model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(&expense); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := upsertExpenseTx(ctx, tx, expense); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReplaceAllExpenses swaps the whole projection for the given list in one
// transaction, so readers never observe a half-updated list. Used by the
// reconciliation reload after the sync queue drains.
func (s *SQLiteStore) ReplaceAllExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear expenses: %w", err)
	}
	for i := range expenses {
		if err := upsertExpenseTx(ctx, tx, expenses[i]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetExpenseByID fetches one expense from the projection.
func (s *SQLiteStore) GetExpenseByID(ctx context.Context, id string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, amount, category, type, date, note FROM expenses WHERE id = ?`, id)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses returns projection rows matching the filter, most recent day
// first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, description, amount, category, type, date, note FROM expenses WHERE 1=1`
	var args []any

	if filter.Start != nil {
		query += ` AND date >= ?`
		args = append(args, filter.Start.Format(dateLayout))
	}
	if filter.End != nil {
		query += ` AND date <= ?`
		args = append(args, filter.End.Format(dateLayout))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, *expense)
	}
	return expenses, rows.Err()
}

func upsertExpenseTx(ctx context.Context, tx *sql.Tx, expense model.Expense) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount, category, type, date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount = excluded.amount,
			category = excluded.category,
			type = excluded.type,
			date = excluded.date,
			note = excluded.note`,
		expense.ID,
		expense.Description,
		expense.Amount.String(),
		expense.Category,
		expense.Type,
		expense.Day().Format(dateLayout),
		expense.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert expense %s: %w", expense.ID, err)
	}
	return nil
}

func deleteExpenseTx(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var (
		expense model.Expense
		amount  string
		date    string
		note    sql.NullString
	)
	err := row.Scan(&expense.ID, &expense.Description, &amount,
		&expense.Category, &expense.Type, &date, &note)
	if err != nil {
		return nil, err
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for expense %s: %w", expense.ID, err)
	}
	expense.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("corrupt date for expense %s: %w", expense.ID, err)
	}
	expense.Note = note.String
	return &expense, nil
}
