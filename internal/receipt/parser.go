// Package receipt converts recognized receipt text into candidate line items.
package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phamvy/chitieu/internal/model"
)

// LineItem is one candidate (description, amount) pair recovered from a
// receipt.
type LineItem struct {
	Description string
	Amount      decimal.Decimal
}

// noisePrefixes mark lines that are structural receipt furniture rather than
// purchased items: totals, payment lines, headers and footers. Both
// Vietnamese and English forms appear in the wild, depending on the store.
var noisePrefixes = []string{
	// Totals and payment.
	"tổng", "thành tiền", "tiền mặt", "tiền thừa", "tiền khách", "thối lại",
	"thuế", "giảm giá", "khuyến mãi", "chiết khấu", "vat",
	"total", "subtotal", "sub-total", "sub total", "amount due", "tax",
	"cash", "change", "balance", "tender", "discount", "payment", "paid",
	// Headers and footers.
	"hoá đơn", "hóa đơn", "số hđ", "ngày", "giờ", "thu ngân", "quầy",
	"địa chỉ", "đt", "sđt", "tel", "mst", "cảm ơn", "hẹn gặp lại",
	"receipt", "invoice", "cashier", "date", "time", "thank", "welcome",
	"store", "www.", "http",
}

var (
	// A run of digits optionally broken by thousand/decimal separators,
	// optionally followed by a currency mark, anchored at end of line.
	amountRe = regexp.MustCompile(`(\d(?:[\d.,]*\d)?)\s*(?:₫|đ|Đ|[dD]|vnd|VND)?\s*$`)

	// Thousands-separated integers, the dominant format on Vietnamese
	// receipts: 45.000, 1,250,000.
	thousandsRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

	separatorRe = regexp.MustCompile(`^[\s\-=_*.]+$`)
	letterRe    = regexp.MustCompile(`\p{L}`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Parser turns an ExtractionResult's text lines into an ordered list of
// candidate line items.
type Parser struct{}

// NewParser creates a receipt line parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts (description, amount) pairs from the recognized text.
// Structural lines are discarded. An amount that the OCR split onto its own
// line is re-attached to the description line directly before it. A result
// with zero items is returned as an empty slice, never an error.
func (p *Parser) Parse(result *model.ExtractionResult) []LineItem {
	items := make([]LineItem, 0)
	if result == nil {
		return items
	}

	// A description line whose amount may follow on the next line.
	pendingDescription := ""

	for _, raw := range result.Lines() {
		line := strings.TrimSpace(raw)
		if line == "" || separatorRe.MatchString(line) {
			continue
		}
		if isNoise(line) {
			pendingDescription = ""
			continue
		}

		description, amount, hasAmount := splitLine(line)
		switch {
		case hasAmount && description != "":
			items = append(items, LineItem{Description: description, Amount: amount})
			pendingDescription = ""
		case hasAmount && pendingDescription != "":
			// Amount detached from its description by the OCR.
			items = append(items, LineItem{Description: pendingDescription, Amount: amount})
			pendingDescription = ""
		case !hasAmount && letterRe.MatchString(line):
			pendingDescription = cleanDescription(line)
		default:
			// Bare number with nothing to attach to, or pure noise.
			pendingDescription = ""
		}
	}

	return items
}

// isNoise reports whether the line is structural receipt text.
func isNoise(line string) bool {
	lower := strings.ToLower(strings.TrimLeft(line, " \t-*=."))
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// splitLine separates a trailing amount from its description. hasAmount is
// false when no parseable positive amount terminates the line.
func splitLine(line string) (description string, amount decimal.Decimal, hasAmount bool) {
	loc := amountRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return cleanDescription(line), decimal.Zero, false
	}

	token := line[loc[2]:loc[3]]
	parsed, ok := parseAmount(token)
	if !ok {
		return cleanDescription(line), decimal.Zero, false
	}

	rest := cleanDescription(line[:loc[0]])
	if rest != "" && !letterRe.MatchString(rest) {
		// Leading digits only (e.g. an item code); keep them as-is but the
		// line is still treated as amount-only for attachment purposes.
		rest = ""
	}
	return rest, parsed, true
}

// parseAmount converts an OCR numeric token into a positive decimal.
// Thousands separators are stripped; a single trailing separator group of
// one or two digits is treated as a decimal fraction.
func parseAmount(token string) (decimal.Decimal, bool) {
	cleaned := token

	switch {
	case thousandsRe.MatchString(cleaned):
		cleaned = strings.NewReplacer(".", "", ",", "").Replace(cleaned)
	case strings.Count(cleaned, ",") == 1 && strings.Count(cleaned, ".") == 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case strings.Count(cleaned, ",") > 0 && strings.Count(cleaned, ".") > 0:
		// Mixed separators: the last one is the decimal point.
		lastDot := strings.LastIndexAny(cleaned, ".,")
		intPart := strings.NewReplacer(".", "", ",", "").Replace(cleaned[:lastDot])
		cleaned = intPart + "." + cleaned[lastDot+1:]
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// cleanDescription trims separators and collapses whitespace.
func cleanDescription(s string) string {
	s = strings.Trim(s, " \t:;-–—.*")
	return spaceRe.ReplaceAllString(s, " ")
}
