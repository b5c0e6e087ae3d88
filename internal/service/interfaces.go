// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/phamvy/chitieu/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	Start    *time.Time
	End      *time.Time
	Category string
	Limit    int
}

// RemoteStore is the boundary to the authoritative backend. The sync queue
// and the reconciliation reload are its only writers and readers.
type RemoteStore interface {
	CreateExpense(ctx context.Context, expense model.Expense) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense model.Expense) error
	// DeleteExpense returns the deleted record to support undo.
	DeleteExpense(ctx context.Context, id string) (*model.Expense, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListTypes(ctx context.Context) ([]string, error)
	ListExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error)
	Health(ctx context.Context) error
}

// Extractor is the boundary to the vision/OCR inference engine.
type Extractor interface {
	IsConfigured() bool
	Extract(ctx context.Context, imagePath string) (*model.ExtractionResult, error)
	Close() error
}

// ImageStore is the filesystem boundary for temporary captured images.
type ImageStore interface {
	Exists(path string) bool
	Remove(path string) error
}

// LocalStore defines the contract for the local persistence layer: the
// read-optimized expense projection plus the durable sync queue.
type LocalStore interface {
	// Projection operations
	UpsertExpense(ctx context.Context, expense model.Expense) error
	ReplaceAllExpenses(ctx context.Context, expenses []model.Expense) error
	GetExpenseByID(ctx context.Context, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)

	// Mutation operations: apply to the projection and enqueue the matching
	// sync entry in a single transaction.
	ApplyLocalMutation(ctx context.Context, entry model.SyncEntry) error
	ApplyLocalMutations(ctx context.Context, entries []model.SyncEntry) error

	// Queue operations
	PendingEntries(ctx context.Context) ([]model.SyncEntry, error)
	PendingCount(ctx context.Context) (int, error)
	MarkEntryInFlight(ctx context.Context, seq int64) error
	MarkEntryPending(ctx context.Context, seq int64) error
	AckEntry(ctx context.Context, seq int64) error
	RequeueInFlight(ctx context.Context) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Connectivity reports whether the remote store is reachable.
type Connectivity interface {
	Online() bool
	Changes() <-chan bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange returns the date range covering the calendar month of t.
func MonthRange(t time.Time) DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}
