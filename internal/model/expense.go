// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a single persisted spending record.
type Expense struct {
	Date        time.Time
	ID          string
	Description string
	Category    string
	Type        string
	Note        string
	Amount      decimal.Decimal
}

// Validate ensures the expense is structurally sound. Membership of Category
// and Type in their canonical sets is checked separately, at persistence time.
func (e *Expense) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("expense id is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("expense description is required")
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("expense amount must be positive, got %s", e.Amount)
	}
	if e.Category == "" {
		return fmt.Errorf("expense category is required")
	}
	if e.Type == "" {
		return fmt.Errorf("expense type is required")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("expense date is required")
	}
	return nil
}

// Day returns the expense date truncated to its calendar day. Expenses carry
// no time-of-day semantics.
func (e *Expense) Day() time.Time {
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two dates fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
