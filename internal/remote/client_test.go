package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "test-token")
	require.NoError(t, err)
	return client
}

func sampleExpense() model.Expense {
	return model.Expense{
		ID:          "e-1",
		Description: "cà phê",
		Amount:      decimal.NewFromInt(29000),
		Category:    "Ăn uống",
		Type:        "Phải chi",
		Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "token")
	assert.True(t, errors.Is(err, common.ErrMissingConfig))

	_, err = NewClient("ftp://example.com", "token")
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestClient_CreateExpense(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/expenses", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var dto expenseDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&dto))
		assert.Equal(t, "29000", dto.Amount)
		assert.Equal(t, "2025-06-15", dto.Date)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto)
	})

	created, err := client.CreateExpense(context.Background(), sampleExpense())
	require.NoError(t, err)
	assert.Equal(t, "e-1", created.ID)
	assert.True(t, decimal.NewFromInt(29000).Equal(created.Amount))
	assert.True(t, model.SameDay(created.Date, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestClient_UpdateExpense_Conflict(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/expenses/e-1", r.URL.Path)
		http.Error(w, "stale version", http.StatusConflict)
	})

	err := client.UpdateExpense(context.Background(), sampleExpense())
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestClient_DeleteExpense_ReturnsRecord(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_ = json.NewEncoder(w).Encode(toDTO(sampleExpense()))
	})

	deleted, err := client.DeleteExpense(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, "cà phê", deleted.Description)
}

func TestClient_DeleteExpense_NotFound(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := client.DeleteExpense(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestClient_ListCategories(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]string{"Ăn uống", "Tạp hoá"})
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ăn uống", "Tạp hoá"}, categories)
}

func TestClient_ListExpensesInRange(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2025-06-30", r.URL.Query().Get("end"))
		_ = json.NewEncoder(w).Encode([]expenseDTO{toDTO(sampleExpense())})
	})

	expenses, err := client.ListExpensesInRange(context.Background(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "cà phê", expenses[0].Description)
}

func TestClient_ServerErrorIsTransport(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.Health(context.Background())
	assert.True(t, errors.Is(err, common.ErrTransport))
}

func TestClient_ConnectionRefusedIsTransport(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", "")
	require.NoError(t, err)

	err = client.Health(context.Background())
	assert.True(t, errors.Is(err, common.ErrTransport))
}
