package tree

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// SearchByName yields the people whose display name contains query, ignoring
// case, skipping excludeID, ordered by display name. A blank query matches
// nobody. Each range over the sequence re-runs the search against t.
func SearchByName(t Tree, query, excludeID string) iter.Seq[Person] {
	return func(yield func(Person) bool) {
		q := strings.TrimSpace(query)
		if q == "" {
			return
		}

		// cases.Caser is stateful and must not be shared between searches.
		fold := cases.Fold()
		needle := fold.String(q)

		var matches []Person
		for _, p := range t.People {
			if p.ID == excludeID {
				continue
			}
			if strings.Contains(fold.String(p.DisplayName), needle) {
				matches = append(matches, p)
			}
		}

		slices.SortStableFunc(matches, func(a, b Person) int {
			return strings.Compare(a.DisplayName, b.DisplayName)
		})

		for _, p := range matches {
			if !yield(p) {
				return
			}
		}
	}
}
