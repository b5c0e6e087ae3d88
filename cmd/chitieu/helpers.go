package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/phamvy/chitieu/internal/config"
	"github.com/phamvy/chitieu/internal/extraction"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/pattern"
	"github.com/phamvy/chitieu/internal/remote"
	"github.com/phamvy/chitieu/internal/service"
	"github.com/phamvy/chitieu/internal/storage"
	"github.com/phamvy/chitieu/internal/syncqueue"
)

const dateLayout = "2006-01-02"

// initStorage opens the local database with auto-migration.
func initStorage(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// createRemoteClient builds the backend client from config. A missing URL is
// an error: callers that can work offline should not call this.
func createRemoteClient() (service.RemoteStore, error) {
	url := viper.GetString("remote.url")
	if url == "" {
		return nil, fmt.Errorf("remote backend is not configured: set remote.url in your config")
	}
	return remote.NewClient(url, viper.GetString("remote.token"))
}

// createExtractor builds the Gemini vision client. An empty API key yields an
// unconfigured extractor; the scan flow reports that before touching the
// network.
func createExtractor(ctx context.Context) (service.Extractor, error) {
	return extraction.NewGemini(ctx,
		viper.GetString("gemini.api_key"),
		viper.GetString("gemini.model"))
}

// loadPatterns rebuilds the suggestion model from the full local history.
func loadPatterns(ctx context.Context, store service.LocalStore) (*pattern.Model, error) {
	history, err := store.ListExpenses(ctx, service.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load expense history: %w", err)
	}
	return pattern.Build(history), nil
}

// localEnqueuer records mutations in the durable queue without a backend
// connection. Used when the remote store is not configured; entries drain on
// the next `chitieu sync`.
type localEnqueuer struct {
	store service.LocalStore
}

func (l localEnqueuer) Enqueue(ctx context.Context, entries ...model.SyncEntry) error {
	return l.store.ApplyLocalMutations(ctx, entries)
}

// probeConnectivity answers Online from a single health check. The one-shot
// CLI drains at most once per invocation, so a polling monitor is overkill
// here; the long-running monitor backs `chitieu sync --watch`.
type probeConnectivity struct {
	online bool
}

func probeRemote(ctx context.Context, remoteStore service.RemoteStore) probeConnectivity {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return probeConnectivity{online: remoteStore.Health(probeCtx) == nil}
}

func (p probeConnectivity) Online() bool         { return p.online }
func (p probeConnectivity) Changes() <-chan bool { return nil }

// newSyncQueue wires the queue service over the local store and backend.
func newSyncQueue(store service.LocalStore, remoteStore service.RemoteStore, conn service.Connectivity) *syncqueue.Queue {
	return syncqueue.New(store, remoteStore, conn, syncqueue.DefaultConfig())
}

// parseDate parses a --date flag value, defaulting to today when empty.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return date, nil
}

// parseMonth parses a --month flag value (YYYY-MM), defaulting to the
// current month when empty.
func parseMonth(value string) (service.DateRange, error) {
	if value == "" {
		return service.MonthRange(time.Now()), nil
	}
	month, err := time.Parse("2006-01", value)
	if err != nil {
		return service.DateRange{}, fmt.Errorf("invalid month %q: expected YYYY-MM", value)
	}
	return service.MonthRange(month), nil
}

// parseAmount parses a positive decimal amount from a CLI argument.
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}

// confirm prints a y/N prompt and reads one line from stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// formatAmount renders an amount with thousands separators, the way
// Vietnamese receipts print đồng values.
func formatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(0)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String() + "₫"
	}
	return b.String() + "₫"
}
