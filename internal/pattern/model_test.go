package pattern

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamvy/chitieu/internal/model"
)

func historyExpense(description, category string) model.Expense {
	return model.Expense{
		ID:          "id",
		Description: description,
		Amount:      decimal.NewFromInt(10000),
		Category:    category,
		Type:        "Phải chi",
		Date:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuild_Count(t *testing.T) {
	m := Build([]model.Expense{
		historyExpense("cà phê sữa", "Ăn uống"),
		historyExpense("xăng xe", "Đi lại"),
	})
	assert.Equal(t, 2, m.Count())

	empty := Build(nil)
	assert.Equal(t, 0, empty.Count())
}

func TestModel_Suggest(t *testing.T) {
	history := []model.Expense{
		historyExpense("cà phê sữa đá", "Ăn uống"),
		historyExpense("cà phê đen", "Ăn uống"),
		historyExpense("bánh mì thịt", "Ăn uống"),
		historyExpense("xăng xe máy", "Đi lại"),
		historyExpense("gửi xe tháng", "Đi lại"),
	}
	m := Build(history)

	t.Run("strong overlap wins", func(t *testing.T) {
		hint, ok := m.Suggest("cà phê muối")
		require.True(t, ok)
		assert.Equal(t, "Ăn uống", hint.Category)
		assert.Greater(t, hint.Score, 0.0)
		assert.LessOrEqual(t, hint.Score, 1.0)
	})

	t.Run("different category", func(t *testing.T) {
		hint, ok := m.Suggest("xăng xe")
		require.True(t, ok)
		assert.Equal(t, "Đi lại", hint.Category)
	})

	t.Run("no overlap yields no hint", func(t *testing.T) {
		_, ok := m.Suggest("khóa học tiếng anh")
		assert.False(t, ok)
	})

	t.Run("empty description yields no hint", func(t *testing.T) {
		_, ok := m.Suggest("")
		assert.False(t, ok)
	})
}

// Rebuilding from the same history must produce identical suggestions.
func TestBuild_Deterministic(t *testing.T) {
	history := []model.Expense{
		historyExpense("cà phê", "Ăn uống"),
		historyExpense("cà phê", "Quà vật"),
		historyExpense("trà đá", "Ăn uống"),
	}

	probe := "cà phê sáng"
	first, firstOK := Build(history).Suggest(probe)
	for i := 0; i < 20; i++ {
		hint, ok := Build(history).Suggest(probe)
		require.Equal(t, firstOK, ok)
		assert.Equal(t, first, hint)
	}
}

func TestModel_Suggest_EmptyModel(t *testing.T) {
	m := Build(nil)
	_, ok := m.Suggest("cà phê")
	assert.False(t, ok)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "lowercased and split", in: "Cà Phê Sữa", want: []string{"cà", "phê", "sữa"}},
		{name: "numbers dropped", in: "combo 2 123", want: []string{"combo"}},
		{name: "single runes dropped", in: "a b cơm", want: []string{"cơm"}},
		{name: "punctuation split", in: "bánh-mì (thịt)", want: []string{"bánh", "mì", "thịt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}
