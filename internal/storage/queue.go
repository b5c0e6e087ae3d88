package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phamvy/chitieu/internal/model"
)

// queuePayload is the durable JSON form of an entry's expense snapshot.
type queuePayload struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Note        string `json:"note,omitempty"`
}

// ApplyLocalMutation applies one mutation to the projection and enqueues its
// sync entry in a single transaction.
func (s *SQLiteStore) ApplyLocalMutation(ctx context.Context, entry model.SyncEntry) error {
	return s.ApplyLocalMutations(ctx, []model.SyncEntry{entry})
}

// ApplyLocalMutations applies a burst of mutations atomically: every
// projection change and every queue entry commits together, or none do. A
// scan's "save all items" lands through here as one transaction.
func (s *SQLiteStore) ApplyLocalMutations(ctx context.Context, entries []model.SyncEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := range entries {
		entry := entries[i]
		switch entry.Op {
		case model.OpCreate, model.OpUpdate:
			if err := upsertExpenseTx(ctx, tx, entry.Expense); err != nil {
				_ = tx.Rollback()
				return err
			}
		case model.OpDelete:
			if err := deleteExpenseTx(ctx, tx, entry.ExpenseID); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		if err := enqueueTx(ctx, tx, entry); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func enqueueTx(ctx context.Context, tx *sql.Tx, entry model.SyncEntry) error {
	var payload sql.NullString
	if entry.Op != model.OpDelete {
		encoded, err := json.Marshal(queuePayload{
			ID:          entry.Expense.ID,
			Description: entry.Expense.Description,
			Amount:      entry.Expense.Amount.String(),
			Category:    entry.Expense.Category,
			Type:        entry.Expense.Type,
			Date:        entry.Expense.Day().Format(dateLayout),
			Note:        entry.Expense.Note,
		})
		if err != nil {
			return fmt.Errorf("failed to encode queue payload: %w", err)
		}
		payload = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_queue (expense_id, op, payload, state)
		VALUES (?, ?, ?, ?)`,
		entry.ExpenseID, string(entry.Op), payload, string(model.EntryPending))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s for expense %s: %w", entry.Op, entry.ExpenseID, err)
	}
	return nil
}

// PendingEntries returns all pending entries in enqueue order.
func (s *SQLiteStore) PendingEntries(ctx context.Context) ([]model.SyncEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, expense_id, op, payload, state, enqueued_at
		FROM sync_queue WHERE state = ? ORDER BY seq`,
		string(model.EntryPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query sync queue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.SyncEntry
	for rows.Next() {
		var (
			entry      model.SyncEntry
			op         string
			state      string
			payload    sql.NullString
			enqueuedAt time.Time
		)
		if err := rows.Scan(&entry.Seq, &entry.ExpenseID, &op, &payload, &state, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync entry: %w", err)
		}
		entry.Op = model.SyncOp(op)
		entry.State = model.SyncEntryState(state)
		entry.EnqueuedAt = enqueuedAt

		if payload.Valid {
			expense, decodeErr := decodePayload(payload.String)
			if decodeErr != nil {
				return nil, fmt.Errorf("entry %d: %w", entry.Seq, decodeErr)
			}
			entry.Expense = *expense
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PendingCount returns the number of unacknowledged entries, in-flight ones
// included. This backs the "pending sync" indicator.
func (s *SQLiteStore) PendingCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return count, nil
}

// MarkEntryInFlight transitions an entry to in-flight before its remote write.
func (s *SQLiteStore) MarkEntryInFlight(ctx context.Context, seq int64) error {
	return s.setEntryState(ctx, seq, model.EntryInFlight)
}

// MarkEntryPending returns a failed entry to pending for a later retry.
func (s *SQLiteStore) MarkEntryPending(ctx context.Context, seq int64) error {
	return s.setEntryState(ctx, seq, model.EntryPending)
}

func (s *SQLiteStore) setEntryState(ctx context.Context, seq int64, state model.SyncEntryState) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE sync_queue SET state = ? WHERE seq = ?`, string(state), seq)
	if err != nil {
		return fmt.Errorf("failed to mark entry %d %s: %w", seq, state, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check entry %d update: %w", seq, err)
	}
	if affected == 0 {
		return fmt.Errorf("sync entry %d does not exist", seq)
	}
	return nil
}

// AckEntry removes an entry after the remote store acknowledged its
// mutation. Removal is the only way an entry leaves the queue.
func (s *SQLiteStore) AckEntry(ctx context.Context, seq int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to ack entry %d: %w", seq, err)
	}
	return nil
}

// RequeueInFlight returns every in-flight entry to pending. Called on
// startup: a write that was in flight when the process died has unknown
// remote state and must be retried.
func (s *SQLiteStore) RequeueInFlight(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_queue SET state = ? WHERE state = ?`,
		string(model.EntryPending), string(model.EntryInFlight))
	if err != nil {
		return fmt.Errorf("failed to requeue in-flight entries: %w", err)
	}
	return nil
}

func decodePayload(raw string) (*model.Expense, error) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode queue payload: %w", err)
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt payload amount: %w", err)
	}
	date, err := time.ParseInLocation(dateLayout, payload.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("corrupt payload date: %w", err)
	}

	return &model.Expense{
		ID:          payload.ID,
		Description: payload.Description,
		Amount:      amount,
		Category:    payload.Category,
		Type:        payload.Type,
		Date:        date,
		Note:        payload.Note,
	}, nil
}
