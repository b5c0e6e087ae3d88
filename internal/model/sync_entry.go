package model

import (
	"fmt"
	"time"
)

// SyncOp identifies the kind of mutation a queue entry carries.
type SyncOp string

// Sync operation constants.
const (
	OpCreate SyncOp = "create"
	OpUpdate SyncOp = "update"
	OpDelete SyncOp = "delete"
)

// SyncEntryState tracks an individual queue entry through a drain.
type SyncEntryState string

// Entry state constants. Acknowledged entries are removed, not marked.
const (
	EntryPending  SyncEntryState = "pending"
	EntryInFlight SyncEntryState = "in-flight"
)

// SyncEntry is a durable record of a not-yet-acknowledged expense mutation.
// Seq is assigned by the local store and defines drain order.
type SyncEntry struct {
	EnqueuedAt time.Time
	ExpenseID  string
	Op         SyncOp
	State      SyncEntryState
	Expense    Expense
	Seq        int64
}

// Validate ensures the entry is well-formed before it is enqueued.
func (e *SyncEntry) Validate() error {
	if e.ExpenseID == "" {
		return fmt.Errorf("sync entry expense id is required")
	}
	switch e.Op {
	case OpCreate, OpUpdate:
		if err := e.Expense.Validate(); err != nil {
			return fmt.Errorf("sync entry payload: %w", err)
		}
	case OpDelete:
		// Deletes carry only the id.
	default:
		return fmt.Errorf("unknown sync op %q", e.Op)
	}
	return nil
}
