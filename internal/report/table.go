package report

import (
	"sort"
	"strings"
)

// Direction is a sort direction for the table view model.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Table is the generic sortable, searchable view model over an aggregated
// row collection. Sortable fields form a closed set of named numeric
// accessors rather than dynamic field lookup, so an unknown key can never
// reach the comparison.
//
// The view model is logic-pure: it holds only the (active key, direction)
// sort state and never the rows themselves.
type Table[T any] struct {
	sortKey string
	dir     Direction

	columns  map[string]func(T) float64
	identity func(T) (id, name string)
}

// NewTable builds a table over the given accessor set. identity supplies
// the id and display name a free-text search matches against. The initial
// sort state is defaultKey descending.
func NewTable[T any](defaultKey string, columns map[string]func(T) float64, identity func(T) (id, name string)) *Table[T] {
	return &Table[T]{
		sortKey:  defaultKey,
		dir:      Desc,
		columns:  columns,
		identity: identity,
	}
}

// SortKey returns the active sort key.
func (t *Table[T]) SortKey() string { return t.sortKey }

// SortDirection returns the active sort direction.
func (t *Table[T]) SortDirection() Direction { return t.dir }

// HasColumn reports whether key names a sortable column.
func (t *Table[T]) HasColumn(key string) bool {
	_, ok := t.columns[key]
	return ok
}

// Request transitions the sort state for a "sort by key" action:
// requesting the active key flips the direction, any other key becomes
// active with direction reset to descending.
func (t *Table[T]) Request(key string) {
	if key == t.sortKey {
		if t.dir == Desc {
			t.dir = Asc
		} else {
			t.dir = Desc
		}
		return
	}
	t.sortKey = key
	t.dir = Desc
}

// SetSort pins an explicit sort state. Unknown keys are ignored so the
// view model can never sort on a column outside the closed set.
func (t *Table[T]) SetSort(key string, dir Direction) {
	if !t.HasColumn(key) {
		return
	}
	t.sortKey = key
	if dir == Asc {
		t.dir = Asc
	} else {
		t.dir = Desc
	}
}

// Apply runs the view pipeline: filter by the search term, then stable
// sort on the active column. Filtering always precedes sorting so rank is
// computed on the post-filter set. The input slice is never mutated.
func (t *Table[T]) Apply(rows []T, term string) []T {
	out := t.Filter(rows, term)
	t.sortRows(out)
	return out
}

// Filter returns the rows whose id or display name contains the term,
// case-insensitively. A blank or whitespace-only term keeps every row.
// The result is a fresh slice.
func (t *Table[T]) Filter(rows []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]T, len(rows))
		copy(out, rows)
		return out
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		id, name := t.identity(row)
		if strings.Contains(strings.ToLower(name), term) || strings.Contains(strings.ToLower(id), term) {
			out = append(out, row)
		}
	}
	return out
}

// sortRows stable-sorts rows in place on the active column. Rows with
// equal values keep their relative order, so repeated sorts are
// idempotent. A sort key outside the column set leaves the order alone.
func (t *Table[T]) sortRows(rows []T) {
	value, ok := t.columns[t.sortKey]
	if !ok {
		return
	}
	asc := t.dir == Asc
	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return value(rows[i]) < value(rows[j])
		}
		return value(rows[i]) > value(rows[j])
	})
}
