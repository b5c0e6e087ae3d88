package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowConfidenceThreshold is the confidence score below which a scanned item
// is flagged for extra attention during review.
const LowConfidenceThreshold = 0.8

// ScannedItem is a review-stage expense candidate produced by the scan
// pipeline. It is never persisted directly; on save it is converted 1:1 into
// an Expense create mutation.
type ScannedItem struct {
	ID          string
	Description string
	Category    string
	Type        string
	Amount      decimal.Decimal
	Confidence  float64
}

// NewScannedItem creates a pipeline-produced item with the given confidence.
func NewScannedItem(description string, amount decimal.Decimal, category, spendingType string, confidence float64) ScannedItem {
	return ScannedItem{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Category:    category,
		Type:        spendingType,
		Confidence:  confidence,
	}
}

// NewManualItem creates an item authored by the user. Manually authored
// items always carry full confidence.
func NewManualItem(description string, amount decimal.Decimal, category, spendingType string) ScannedItem {
	item := NewScannedItem(description, amount, category, spendingType, 1.0)
	return item
}

// ApplyEdit replaces the item's reviewable fields. Any user edit resets
// confidence to 1.0 regardless of what the pipeline originally scored.
func (s *ScannedItem) ApplyEdit(description string, amount decimal.Decimal, category, spendingType string) {
	s.Description = description
	s.Amount = amount
	s.Category = category
	s.Type = spendingType
	s.Confidence = 1.0
}

// NeedsReview reports whether the item should carry a low-confidence warning.
func (s *ScannedItem) NeedsReview() bool {
	return s.Confidence < LowConfidenceThreshold
}

// Validate ensures the item can be converted into an expense.
func (s *ScannedItem) Validate() error {
	if s.Description == "" {
		return fmt.Errorf("item description is required")
	}
	if !s.Amount.IsPositive() {
		return fmt.Errorf("item amount must be positive, got %s", s.Amount)
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", s.Confidence)
	}
	return nil
}

// ToExpense converts the reviewed item into an expense dated on the given day.
func (s *ScannedItem) ToExpense(date time.Time) Expense {
	return Expense{
		ID:          s.ID,
		Description: s.Description,
		Amount:      s.Amount,
		Category:    s.Category,
		Type:        s.Type,
		Date:        date,
	}
}
