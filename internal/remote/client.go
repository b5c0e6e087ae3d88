// Package remote implements the RemoteStore interface against the expense
// backend's REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phamvy/chitieu/internal/common"
	"github.com/phamvy/chitieu/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	dateLayout     = "2006-01-02"
)

// Client talks to the remote expense store over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// expenseDTO is the wire form of an expense.
type expenseDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Note        string `json:"note,omitempty"`
}

// NewClient creates a remote store client. token is sent as a bearer
// credential on every request.
func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: remote base URL", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: remote base URL must be http(s)", common.ErrInvalidConfig)
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// CreateExpense persists a new expense remotely and returns the stored record.
func (c *Client) CreateExpense(ctx context.Context, expense model.Expense) (*model.Expense, error) {
	var created expenseDTO
	if err := c.do(ctx, http.MethodPost, "/expenses", toDTO(expense), &created); err != nil {
		return nil, err
	}
	return fromDTO(created)
}

// UpdateExpense replaces an existing remote expense in full.
func (c *Client) UpdateExpense(ctx context.Context, expense model.Expense) error {
	path := "/expenses/" + url.PathEscape(expense.ID)
	return c.do(ctx, http.MethodPut, path, toDTO(expense), nil)
}

// DeleteExpense removes a remote expense and returns the deleted record to
// support undo.
func (c *Client) DeleteExpense(ctx context.Context, id string) (*model.Expense, error) {
	var deleted expenseDTO
	path := "/expenses/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &deleted); err != nil {
		return nil, err
	}
	return fromDTO(deleted)
}

// ListCategories returns the canonical category names the backend enforces.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ListTypes returns the canonical spending type names.
func (c *Client) ListTypes(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/types", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ListExpensesInRange fetches the authoritative expense list for a period.
func (c *Client) ListExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	query := url.Values{}
	query.Set("start", start.Format(dateLayout))
	query.Set("end", end.Format(dateLayout))

	var dtos []expenseDTO
	if err := c.do(ctx, http.MethodGet, "/expenses?"+query.Encode(), nil, &dtos); err != nil {
		return nil, err
	}

	expenses := make([]model.Expense, 0, len(dtos))
	for _, dto := range dtos {
		expense, err := fromDTO(dto)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}
	return expenses, nil
}

// Health probes the backend. A nil error means the store is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs one request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decode.
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, method, path)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s %s: %s", common.ErrConflict, method, path, readError(resp.Body))
	default:
		return fmt.Errorf("%w: %s %s returned %d: %s",
			common.ErrTransport, method, path, resp.StatusCode, readError(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", common.ErrTransport, err)
	}
	return nil
}

// readError pulls a short error detail out of a failed response body.
func readError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func toDTO(expense model.Expense) expenseDTO {
	return expenseDTO{
		ID:          expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount.String(),
		Category:    expense.Category,
		Type:        expense.Type,
		Date:        expense.Day().Format(dateLayout),
		Note:        expense.Note,
	}
}

func fromDTO(dto expenseDTO) (*model.Expense, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", common.ErrTransport, dto.Amount)
	}
	date, err := time.ParseInLocation(dateLayout, dto.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", common.ErrTransport, dto.Date)
	}
	return &model.Expense{
		ID:          dto.ID,
		Description: dto.Description,
		Amount:      amount,
		Category:    dto.Category,
		Type:        dto.Type,
		Date:        date,
		Note:        dto.Note,
	}, nil
}
