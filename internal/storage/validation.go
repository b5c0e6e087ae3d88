// Package storage provides the local persistence layer: the expense
// projection and the durable sync queue.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phamvy/chitieu/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidEntry   = errors.New("invalid sync entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates a single expense.
func validateExpense(expense *model.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	return nil
}

// validateEntries validates a slice of sync entries.
func validateEntries(entries []model.SyncEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: entries", ErrEmptySlice)
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("%w: entry at index %d: %v", ErrInvalidEntry, i, err)
		}
	}
	return nil
}
