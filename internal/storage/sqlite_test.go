package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/service"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testExpense(description string) model.Expense {
	return model.Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      decimal.NewFromInt(45000),
		Category:    "Tạp hoá",
		Type:        "Phải chi",
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStore_Migrate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSQLiteStore_UpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expense := testExpense("rau củ")
	expense.Note = "chợ sáng"
	require.NoError(t, store.UpsertExpense(ctx, expense))

	got, err := store.GetExpenseByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.Description, got.Description)
	assert.True(t, expense.Amount.Equal(got.Amount))
	assert.Equal(t, expense.Category, got.Category)
	assert.Equal(t, expense.Type, got.Type)
	assert.Equal(t, expense.Note, got.Note)
	assert.True(t, model.SameDay(expense.Date, got.Date))

	// Full replacement on conflicting id.
	expense.Description = "rau củ quả"
	expense.Amount = decimal.NewFromInt(50000)
	require.NoError(t, store.UpsertExpense(ctx, expense))

	got, err = store.GetExpenseByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "rau củ quả", got.Description)
	assert.True(t, decimal.NewFromInt(50000).Equal(got.Amount))
}

func TestSQLiteStore_GetExpenseByID_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetExpenseByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSQLiteStore_UpsertExpense_Invalid(t *testing.T) {
	store := newTestStore(t)
	expense := testExpense("x")
	expense.Amount = decimal.NewFromInt(-5)
	err := store.UpsertExpense(context.Background(), expense)
	assert.True(t, errors.Is(err, ErrInvalidExpense))
}

func TestSQLiteStore_ListExpenses_Filtering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	june := testExpense("tháng sáu")
	june.Date = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	july := testExpense("tháng bảy")
	july.Date = time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	july.Category = "Ăn uống"
	require.NoError(t, store.UpsertExpense(ctx, june))
	require.NoError(t, store.UpsertExpense(ctx, july))

	all, err := store.ListExpenses(ctx, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Most recent day first.
	assert.Equal(t, "tháng bảy", all[0].Description)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	got, err := store.ListExpenses(ctx, service.ExpenseFilter{Start: &start})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tháng bảy", got[0].Description)

	got, err = store.ListExpenses(ctx, service.ExpenseFilter{Category: "Ăn uống"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tháng bảy", got[0].Description)

	got, err = store.ListExpenses(ctx, service.ExpenseFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteStore_ReplaceAllExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertExpense(ctx, testExpense("cũ")))

	fresh := []model.Expense{testExpense("mới một"), testExpense("mới hai")}
	require.NoError(t, store.ReplaceAllExpenses(ctx, fresh))

	all, err := store.ListExpenses(ctx, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, expense := range all {
		assert.NotEqual(t, "cũ", expense.Description)
	}
}

func TestSQLiteStore_ApplyLocalMutations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testExpense("bánh mì")
	second := testExpense("cà phê")

	err := store.ApplyLocalMutations(ctx, []model.SyncEntry{
		{ExpenseID: first.ID, Op: model.OpCreate, Expense: first},
		{ExpenseID: second.ID, Op: model.OpCreate, Expense: second},
	})
	require.NoError(t, err)

	// Projection and queue both reflect the burst.
	all, err := store.ListExpenses(ctx, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	entries, err := store.PendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ExpenseID)
	assert.Equal(t, second.ID, entries[1].ExpenseID)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.Equal(t, model.EntryPending, entries[0].State)
	assert.True(t, first.Amount.Equal(entries[0].Expense.Amount))

	// A delete removes the projection row and enqueues an entry without a
	// payload.
	err = store.ApplyLocalMutation(ctx, model.SyncEntry{ExpenseID: first.ID, Op: model.OpDelete})
	require.NoError(t, err)

	_, err = store.GetExpenseByID(ctx, first.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	entries, err = store.PendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, model.OpDelete, entries[2].Op)
}

func TestSQLiteStore_ApplyLocalMutations_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	bad := testExpense("x")
	bad.Amount = decimal.Zero

	err := store.ApplyLocalMutations(context.Background(), []model.SyncEntry{
		{ExpenseID: bad.ID, Op: model.OpCreate, Expense: bad},
	})
	assert.True(t, errors.Is(err, ErrInvalidEntry))

	err = store.ApplyLocalMutations(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrEmptySlice))
}

func TestSQLiteStore_QueueLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expense := testExpense("trà sữa")
	require.NoError(t, store.ApplyLocalMutation(ctx,
		model.SyncEntry{ExpenseID: expense.ID, Op: model.OpCreate, Expense: expense}))

	entries, err := store.PendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	seq := entries[0].Seq

	require.NoError(t, store.MarkEntryInFlight(ctx, seq))

	// In-flight entries are not offered to the drain again.
	entries, err = store.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Unacknowledged entries still count as pending work.
	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A failed write goes back to pending.
	require.NoError(t, store.MarkEntryPending(ctx, seq))
	entries, err = store.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Acknowledgment removes the entry.
	require.NoError(t, store.AckEntry(ctx, seq))
	count, err = store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteStore_RequeueInFlight(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expense := testExpense("gửi xe")
	require.NoError(t, store.ApplyLocalMutation(ctx,
		model.SyncEntry{ExpenseID: expense.ID, Op: model.OpCreate, Expense: expense}))

	entries, err := store.PendingEntries(ctx)
	require.NoError(t, err)
	require.NoError(t, store.MarkEntryInFlight(ctx, entries[0].Seq))

	require.NoError(t, store.RequeueInFlight(ctx))

	entries, err = store.PendingEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteStore_MarkMissingEntry(t *testing.T) {
	store := newTestStore(t)
	err := store.MarkEntryInFlight(context.Background(), 9999)
	assert.Error(t, err)
}
