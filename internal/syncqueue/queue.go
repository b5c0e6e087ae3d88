// Package syncqueue reconciles locally created expense mutations with the
// remote store. Mutations accumulate in a durable queue regardless of
// connectivity and are drained in the background while online.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/service"
)

// State is the aggregate queue state exposed to the rest of the system.
type State string

// Aggregate states. StateSynced is a one-shot transitional signal emitted
// when the queue empties after having had entries; it triggers a full reload
// of the authoritative expense list.
const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
)

// reconcileWindow bounds how far back the post-drain reload fetches
// authoritative expenses.
const reconcileWindow = 10 * 365 * 24 * time.Hour

// Config holds tunables for the queue service.
type Config struct {
	Retry         service.RetryOptions
	DrainInterval time.Duration
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		DrainInterval: 30 * time.Second,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Queue owns the durable mutation queue. All enqueues and drains go through
// it; the drain holds an exclusive lock so a scan's burst-enqueue and a
// concurrent drain never lose or duplicate entries.
type Queue struct {
	store  service.LocalStore
	remote service.RemoteStore
	conn   service.Connectivity
	events chan State
	config Config

	drainMu sync.Mutex
	stateMu sync.RWMutex
	state   State
}

// New creates a queue service over the given stores.
func New(store service.LocalStore, remote service.RemoteStore, conn service.Connectivity, config Config) *Queue {
	return &Queue{
		store:  store,
		remote: remote,
		conn:   conn,
		config: config,
		state:  StateIdle,
		events: make(chan State, 16),
	}
}

// State returns the current aggregate state.
func (q *Queue) State() State {
	q.stateMu.RLock()
	defer q.stateMu.RUnlock()
	return q.state
}

// Events exposes aggregate state transitions. Sends are non-blocking; a slow
// consumer misses intermediate transitions, never mutations.
func (q *Queue) Events() <-chan State {
	return q.events
}

// PendingCount reports how many mutations await remote acknowledgment.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	return q.store.PendingCount(ctx)
}

// Enqueue atomically applies mutations locally and records them for the
// next drain. It never touches the network.
func (q *Queue) Enqueue(ctx context.Context, entries ...model.SyncEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return q.store.ApplyLocalMutations(ctx, entries)
}

// Drain applies pending entries to the remote store, oldest first. Entries
// for the same expense are strictly ordered: once one fails, the rest of
// that expense's entries stay pending so a stale mutation can never
// overwrite a newer one. Offline, Drain is a no-op.
func (q *Queue) Drain(ctx context.Context) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	if !q.conn.Online() {
		return nil
	}

	entries, err := q.store.PendingEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	q.setState(StateSyncing)
	defer func() {
		if q.State() == StateSyncing {
			q.setState(StateIdle)
		}
	}()

	blocked := make(map[string]bool)
	acked := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if blocked[entry.ExpenseID] {
			continue
		}

		if err := q.store.MarkEntryInFlight(ctx, entry.Seq); err != nil {
			return err
		}

		if applyErr := q.apply(ctx, entry); applyErr != nil {
			if markErr := q.store.MarkEntryPending(ctx, entry.Seq); markErr != nil {
				return markErr
			}
			blocked[entry.ExpenseID] = true
			common.LogError(applyErr, "Sync entry failed, keeping pending", common.Fields{
				"seq":        entry.Seq,
				"expense_id": entry.ExpenseID,
				"op":         entry.Op,
			})
			continue
		}

		if err := q.store.AckEntry(ctx, entry.Seq); err != nil {
			return err
		}
		acked++
	}

	remaining, err := q.store.PendingCount(ctx)
	if err != nil {
		return err
	}

	if remaining == 0 && acked > 0 {
		q.setState(StateSynced)
		q.reconcile(ctx)
	}
	q.setState(StateIdle)

	slog.Info("Drain completed", "acked", acked, "remaining", remaining)
	return nil
}

// Run drains in the background until the context is cancelled: once at
// startup, whenever connectivity comes back, and on a steady interval.
func (q *Queue) Run(ctx context.Context) {
	if err := q.store.RequeueInFlight(ctx); err != nil {
		common.LogError(err, "Failed to requeue in-flight entries", nil)
	}

	interval := q.config.DrainInterval
	if interval <= 0 {
		interval = DefaultConfig().DrainInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	changes := q.conn.Changes()

	q.drainAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if online {
				q.drainAndLog(ctx)
			}
		case <-ticker.C:
			q.drainAndLog(ctx)
		}
	}
}

func (q *Queue) drainAndLog(ctx context.Context) {
	if err := q.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		common.LogError(err, "Background drain failed", nil)
	}
}

// apply sends one mutation to the remote store, retrying transport
// failures. Conflicts are not retried; they stay pending for inspection.
func (q *Queue) apply(ctx context.Context, entry model.SyncEntry) error {
	operation := func() error {
		var err error
		switch entry.Op {
		case model.OpCreate:
			_, err = q.remote.CreateExpense(ctx, entry.Expense)
		case model.OpUpdate:
			err = q.remote.UpdateExpense(ctx, entry.Expense)
		case model.OpDelete:
			_, err = q.remote.DeleteExpense(ctx, entry.ExpenseID)
			if errors.Is(err, common.ErrNotFound) {
				// Already gone remotely; the intent is satisfied.
				err = nil
			}
		default:
			return &common.RetryableError{Err: fmt.Errorf("unknown sync op %q", entry.Op), Retryable: false}
		}

		if errors.Is(err, common.ErrConflict) {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		return err
	}

	return common.WithRetry(ctx, operation, q.config.Retry)
}

// reconcile reloads the authoritative expense list from the remote store
// after a drain empties the queue, resolving any local/remote divergence.
func (q *Queue) reconcile(ctx context.Context) {
	end := time.Now().UTC()
	start := end.Add(-reconcileWindow)

	expenses, err := q.remote.ListExpensesInRange(ctx, start, end)
	if err != nil {
		common.LogError(err, "Reconciliation reload failed", nil)
		return
	}
	if err := q.store.ReplaceAllExpenses(ctx, expenses); err != nil {
		common.LogError(err, "Failed to replace expense projection", nil)
		return
	}
	slog.Info("Reconciled expense projection", "count", len(expenses))
}

func (q *Queue) setState(state State) {
	q.stateMu.Lock()
	if q.state == state {
		q.stateMu.Unlock()
		return
	}
	q.state = state
	q.stateMu.Unlock()

	select {
	case q.events <- state:
	default:
	}
}
