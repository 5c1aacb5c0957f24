// Package search filters and ranks a notebook snapshot against a query.
// It never touches the filesystem; the notebook is the source of truth.
package search

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Result is the ordered, filtered view for one query.
type Result struct {
	Query string
	Notes []*models.Note
	// Creatable signals that the query is itself a valid candidate title
	// for a new note: non-empty and not equal (case-insensitively) to any
	// existing title.
	Creatable bool
}

// Filter returns the notes whose titles contain query as a case-insensitive
// substring. Prefix matches sort before infix matches; within each group
// the tie-break is case-insensitive alphabetical, then original scan order.
// An empty query matches all notes. Output is deterministic: identical
// inputs produce identical results.
func Filter(notes []*models.Note, query string) Result {
	q := strings.ToLower(query)

	matched := make([]*models.Note, 0, len(notes))
	exact := false
	for _, n := range notes {
		title := strings.ToLower(n.Title)
		if title == q {
			exact = true
		}
		if q == "" || strings.Contains(title, q) {
			matched = append(matched, n)
		}
	}

	// Stable sort: equal keys keep their scan-order position.
	sort.SliceStable(matched, func(i, j int) bool {
		ti := strings.ToLower(matched[i].Title)
		tj := strings.ToLower(matched[j].Title)
		if q != "" {
			pi := strings.HasPrefix(ti, q)
			pj := strings.HasPrefix(tj, q)
			if pi != pj {
				return pi
			}
		}
		return ti < tj
	})

	return Result{
		Query:     query,
		Notes:     matched,
		Creatable: query != "" && !exact,
	}
}

// Autocomplete returns the first prefix match of the result, the note whose
// title the search bar completes inline. Second return is false when the
// query is empty or nothing matches by prefix.
func Autocomplete(r Result) (*models.Note, bool) {
	if r.Query == "" {
		return nil, false
	}
	q := strings.ToLower(r.Query)
	for _, n := range r.Notes {
		if strings.HasPrefix(strings.ToLower(n.Title), q) {
			return n, true
		}
	}
	return nil, false
}
