// Package pattern builds a read-only summary of historical spending used to
// bias ambiguous category assignment during scanning.
package pattern

import (
	"regexp"
	"sort"
	"strings"

	"github.com/phamvy/chitieu/internal/model"
)

// signature is the statistical fingerprint of one category: how often each
// description token has appeared under it.
type signature struct {
	tokenCounts map[string]int
	total       int
}

// Model is an immutable snapshot mapping each category to its signature,
// rebuilt wholesale from the full expense history. It is a hint source only;
// it never decides a category on its own.
type Model struct {
	signatures map[string]signature
	count      int
}

// Hint is a category suggestion derived from historical descriptions.
type Hint struct {
	Category string
	Score    float64
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Build constructs a model from the full expense history. Building is
// deterministic: the same history always yields the same model.
func Build(history []model.Expense) *Model {
	signatures := make(map[string]signature)

	for _, expense := range history {
		sig, ok := signatures[expense.Category]
		if !ok {
			sig = signature{tokenCounts: make(map[string]int)}
		}
		for _, token := range tokenize(expense.Description) {
			sig.tokenCounts[token]++
			sig.total++
		}
		signatures[expense.Category] = sig
	}

	return &Model{
		signatures: signatures,
		count:      len(history),
	}
}

// Count returns the number of historical expenses the model was built from.
func (m *Model) Count() int {
	return m.count
}

// Suggest scores the description against every category signature and
// returns the best hint. ok is false when nothing in the history overlaps
// with the description.
func (m *Model) Suggest(description string) (Hint, bool) {
	tokens := tokenize(description)
	if len(tokens) == 0 || len(m.signatures) == 0 {
		return Hint{}, false
	}

	type scored struct {
		category string
		score    float64
	}
	var candidates []scored

	for category, sig := range m.signatures {
		if sig.total == 0 {
			continue
		}
		matched := 0
		weight := 0.0
		for _, token := range tokens {
			if count, ok := sig.tokenCounts[token]; ok {
				matched++
				weight += float64(count) / float64(sig.total)
			}
		}
		if matched == 0 {
			continue
		}
		// Fraction of description tokens seen under this category, nudged
		// by how dominant those tokens are in the signature.
		score := float64(matched) / float64(len(tokens))
		score = score*0.8 + minFloat(weight, 1.0)*0.2
		candidates = append(candidates, scored{category: category, score: score})
	}

	if len(candidates) == 0 {
		return Hint{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].category < candidates[j].category
	})

	return Hint{Category: candidates[0].category, Score: candidates[0].score}, true
}

// tokenize lowercases a description and splits it into word tokens, dropping
// single characters and bare numbers that carry no signal.
func tokenize(description string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(description), -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if len([]rune(token)) < 2 {
			continue
		}
		if isNumeric(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
