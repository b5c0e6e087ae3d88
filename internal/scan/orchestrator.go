// Package scan drives the receipt-to-expense flow: capture preview,
// extraction and categorization, then user review. The flow is a standalone
// state machine; presentation layers observe transitions instead of owning
// them.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phamvy/chitieu/internal/category"
	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
	"github.com/phamvy/chitieu/internal/pattern"
	"github.com/phamvy/chitieu/internal/receipt"
	"github.com/phamvy/chitieu/internal/service"
)

// State identifies where the scan flow currently is.
type State string

// Flow states. Results can only return to Preview through cancellation,
// never back to Processing.
const (
	StatePreview    State = "preview"
	StateProcessing State = "processing"
	StateResults    State = "results"
)

// ErrConfirmDiscard is returned by Cancel when reviewed items exist and the
// caller has not confirmed throwing them away.
var ErrConfirmDiscard = errors.New("discarding scanned items requires confirmation")

// patternFloor is the minimum history-hint score worth acting on.
const patternFloor = 0.3

// Enqueuer accepts the mutations produced when a review is saved.
type Enqueuer interface {
	Enqueue(ctx context.Context, entries ...model.SyncEntry) error
}

// Flow is one scan of one captured receipt image. It is not safe for
// concurrent use; a scan is a single logical flow.
type Flow struct {
	extractor  service.Extractor
	parser     *receipt.Parser
	normalizer *category.Normalizer
	patterns   *pattern.Model
	images     service.ImageStore
	queue      Enqueuer
	observer   func(State)
	imagePath  string
	items      []model.ScannedItem
	state      State
}

// NewFlow creates a flow in Preview holding the captured image. patterns may
// be nil, in which case categorization falls back to keyword and default
// rules only.
func NewFlow(
	extractor service.Extractor,
	parser *receipt.Parser,
	normalizer *category.Normalizer,
	patterns *pattern.Model,
	images service.ImageStore,
	queue Enqueuer,
	imagePath string,
) *Flow {
	return &Flow{
		extractor:  extractor,
		parser:     parser,
		normalizer: normalizer,
		patterns:   patterns,
		images:     images,
		queue:      queue,
		imagePath:  imagePath,
		state:      StatePreview,
	}
}

// SetObserver registers a callback invoked on every state transition.
func (f *Flow) SetObserver(observer func(State)) {
	f.observer = observer
}

// State returns the flow's current state.
func (f *Flow) State() State {
	return f.state
}

// Items returns the reviewable items. Valid only in Results.
func (f *Flow) Items() []model.ScannedItem {
	return f.items
}

// Process runs the Preview → Processing → Results transition. On any
// failure the flow returns to Preview with a single human-readable error.
// Whatever happens, the temporary captured image is deleted before Process
// returns: its content is private and must not outlive the extraction.
func (f *Flow) Process(ctx context.Context) error {
	if f.state != StatePreview {
		return fmt.Errorf("cannot process from state %s", f.state)
	}
	f.setState(StateProcessing)

	items, err := f.run(ctx)
	if err != nil {
		f.setState(StatePreview)
		return common.NewUserError(userMessage(err), err)
	}

	f.items = items
	f.setState(StateResults)
	return nil
}

func (f *Flow) run(ctx context.Context) ([]model.ScannedItem, error) {
	// Privacy-critical: runs on success, failure, and cancellation alike.
	// Its own failure is logged and never surfaced.
	defer f.cleanupImage()

	if !f.extractor.IsConfigured() {
		return nil, common.ErrNotConfigured
	}

	result, err := f.extractor.Extract(ctx, f.imagePath)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return nil, common.ErrNoTextFound
	}

	lineItems := f.parser.Parse(result)
	if len(lineItems) == 0 {
		return nil, common.ErrNoItemsFound
	}

	items := f.categorize(lineItems)

	// A cancelled scan must not surface partially-computed results.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("Scan processed",
		"lines", len(result.Lines()),
		"items", len(items),
		"elapsed", result.Elapsed)
	return items, nil
}

// categorize resolves a canonical category and type for each parsed line.
// The pattern model is consulted first as a history hint, then the static
// keyword table, then the fixed default. Everything passes through the
// normalizer, so no item can leave here with a non-canonical label.
func (f *Flow) categorize(lineItems []receipt.LineItem) []model.ScannedItem {
	items := make([]model.ScannedItem, 0, len(lineItems))
	for _, line := range lineItems {
		var (
			label      string
			confidence float64
		)

		if hint, ok := f.suggest(line.Description); ok {
			label = hint.Category
			confidence = 0.5 + hint.Score/2
			if confidence > 0.95 {
				confidence = 0.95
			}
		} else if guess, ok := category.GuessFromDescription(line.Description); ok {
			label = guess
			confidence = 0.7
		} else {
			label = category.DefaultCategory
			confidence = 0.4
		}

		items = append(items, model.NewScannedItem(
			line.Description,
			line.Amount,
			f.normalizer.Normalize(label),
			f.normalizer.NormalizeType(""),
			confidence,
		))
	}
	return items
}

func (f *Flow) suggest(description string) (pattern.Hint, bool) {
	if f.patterns == nil {
		return pattern.Hint{}, false
	}
	hint, ok := f.patterns.Suggest(description)
	if !ok || hint.Score < patternFloor {
		return pattern.Hint{}, false
	}
	return hint, true
}

// UpdateItem replaces the reviewable fields of one item. The category and
// type are normalized; confidence resets to 1.0.
func (f *Flow) UpdateItem(id string, edit model.ScannedItem) error {
	if f.state != StateResults {
		return fmt.Errorf("cannot edit items in state %s", f.state)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].ApplyEdit(
				edit.Description,
				edit.Amount,
				f.normalizer.Normalize(edit.Category),
				f.normalizer.NormalizeType(edit.Type),
			)
			return f.items[i].Validate()
		}
	}
	return fmt.Errorf("%w: item %s", common.ErrNotFound, id)
}

// RemoveItem drops one item from the review list.
func (f *Flow) RemoveItem(id string) error {
	if f.state != StateResults {
		return fmt.Errorf("cannot remove items in state %s", f.state)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: item %s", common.ErrNotFound, id)
}

// Cancel returns the flow to Preview. When reviewed items exist, the caller
// must pass confirmed=true; otherwise ErrConfirmDiscard is returned and the
// flow stays in Results.
func (f *Flow) Cancel(confirmed bool) error {
	if f.state == StateResults && len(f.items) > 0 && !confirmed {
		return ErrConfirmDiscard
	}
	f.items = nil
	f.setState(StatePreview)
	return nil
}

// Save converts every reviewed item 1:1 into an expense create mutation and
// submits the batch to the sync queue. On success the scan flow terminates:
// items are cleared and the flow returns to Preview for disposal.
func (f *Flow) Save(ctx context.Context, date time.Time) error {
	if f.state != StateResults {
		return fmt.Errorf("cannot save from state %s", f.state)
	}
	if len(f.items) == 0 {
		return fmt.Errorf("nothing to save")
	}

	entries := make([]model.SyncEntry, 0, len(f.items))
	for i := range f.items {
		if err := f.items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		expense := f.items[i].ToExpense(date)
		entries = append(entries, model.SyncEntry{
			ExpenseID: expense.ID,
			Op:        model.OpCreate,
			Expense:   expense,
		})
	}

	if err := f.queue.Enqueue(ctx, entries...); err != nil {
		return fmt.Errorf("failed to enqueue scanned expenses: %w", err)
	}

	slog.Info("Scan saved", "items", len(entries))
	f.items = nil
	f.setState(StatePreview)
	return nil
}

// cleanupImage deletes the temporary captured image. Failure here is
// recovered locally: it is logged and never aborts the flow.
func (f *Flow) cleanupImage() {
	if f.imagePath == "" || !f.images.Exists(f.imagePath) {
		return
	}
	if err := f.images.Remove(f.imagePath); err != nil {
		common.LogError(err, "Failed to delete temporary scan image", common.Fields{
			"path": f.imagePath,
		})
	}
}

func (f *Flow) setState(state State) {
	if f.state == state {
		return
	}
	f.state = state
	if f.observer != nil {
		f.observer(state)
	}
}

// userMessage maps a pipeline failure onto the single message shown to the
// user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrNotConfigured):
		return "Receipt scanning is not set up: add a Gemini API key to your config"
	case errors.Is(err, common.ErrNoTextFound):
		return "No text could be recognized in the photo"
	case errors.Is(err, common.ErrNoItemsFound):
		return "No purchase lines could be read from the receipt"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The scan was cancelled"
	default:
		return "The scan failed"
	}
}
