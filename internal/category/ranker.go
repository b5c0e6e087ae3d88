package category

import (
	"sort"

	"github.com/phamvy/chitieu/internal/model"
)

// Rank orders categories for presentation by how often each was used in the
// given period's expenses: occurrence count descending, name ascending on
// ties. Categories with zero occurrences keep their place at the tail,
// alphabetical among themselves. The ordering is presentation-only.
func Rank(categories []string, periodExpenses []model.Expense) []string {
	counts := make(map[string]int, len(categories))
	for _, expense := range periodExpenses {
		counts[expense.Category]++
	}

	ranked := make([]string, len(categories))
	copy(ranked, categories)

	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := counts[ranked[i]], counts[ranked[j]]
		if ci != cj {
			return ci > cj
		}
		return ranked[i] < ranked[j]
	})

	return ranked
}
