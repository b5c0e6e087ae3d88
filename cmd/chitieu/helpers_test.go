package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := parseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), date)

	today, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, today.Equal(today.Truncate(24*time.Hour)))

	_, err = parseDate("15/06/2025")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	period, err := parseMonth("2025-06")
	require.NoError(t, err)
	assert.Equal(t, time.June, period.Start.Month())
	assert.Equal(t, 1, period.Start.Day())
	assert.Equal(t, time.June, period.End.Month())
	assert.Equal(t, 30, period.End.Day())

	_, err = parseMonth("June 2025")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("45000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(45000).Equal(amount))

	amount, err = parseAmount("45,000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(45000).Equal(amount))

	_, err = parseAmount("0")
	assert.Error(t, err)

	_, err = parseAmount("-500")
	assert.Error(t, err)

	_, err = parseAmount("abc")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0₫"},
		{500, "500₫"},
		{45000, "45.000₫"},
		{1250000, "1.250.000₫"},
		{-70000, "-70.000₫"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(decimal.NewFromInt(tt.in)))
	}
}
