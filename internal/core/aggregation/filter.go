package aggregation

import (
	"slices"
	"time"
)

type fieldMatcher struct {
	field   Field
	allowed map[string]struct{}
}

// matcher is Criteria compiled against one table's columns. Constraints on
// columns the table does not have are dropped here, once.
type matcher struct {
	fields     []fieldMatcher
	minPrice   *float64
	maxPrice   *float64
	start, end *time.Time
}

func compile(c Criteria, cols ColumnSet) matcher {
	var m matcher
	for f, values := range c.Values {
		if len(values) == 0 || !cols.Has(f) {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		m.fields = append(m.fields, fieldMatcher{field: f, allowed: allowed})
	}
	// Deterministic evaluation order keeps short-circuiting stable between runs.
	slices.SortFunc(m.fields, func(a, b fieldMatcher) int { return int(a.field) - int(b.field) })

	if cols.HasColumn(ColPrice) {
		m.minPrice, m.maxPrice = c.MinPrice, c.MaxPrice
	}
	if cols.HasColumn(ColDate) {
		if c.StartDate != nil {
			d := DayOf(*c.StartDate)
			m.start = &d
		}
		if c.EndDate != nil {
			d := DayOf(*c.EndDate)
			m.end = &d
		}
	}
	return m
}

func (m matcher) empty() bool {
	return len(m.fields) == 0 && m.minPrice == nil && m.maxPrice == nil && m.start == nil && m.end == nil
}

func (m matcher) match(r Row) bool {
	for _, fm := range m.fields {
		v := r.Attr(fm.field)
		if v == nil {
			return false
		}
		if _, ok := fm.allowed[*v]; !ok {
			return false
		}
	}
	if m.minPrice != nil || m.maxPrice != nil {
		p := r.Amount()
		if p == nil {
			return false
		}
		if m.minPrice != nil && *p < *m.minPrice {
			return false
		}
		if m.maxPrice != nil && *p > *m.maxPrice {
			return false
		}
	}
	if m.start != nil || m.end != nil {
		d := r.Date()
		if d == nil {
			return false
		}
		day := DayOf(*d)
		if m.start != nil && day.Before(*m.start) {
			return false
		}
		if m.end != nil && day.After(*m.end) {
			return false
		}
	}
	return true
}

// Filter returns the rows of t that satisfy c, in their original order. The input
// table is never modified; a criteria that constrains nothing returns the same rows.
func Filter[R Row](t Table[R], c Criteria) Table[R] {
	m := compile(c, t.Columns)
	if m.empty() {
		return Table[R]{Rows: slices.Clip(t.Rows), Columns: t.Columns}
	}
	out := make([]R, 0, len(t.Rows)/4)
	for _, r := range t.Rows {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return Table[R]{Rows: out, Columns: t.Columns}
}

// Count returns how many rows of t satisfy c without materializing them.
func Count[R Row](t Table[R], c Criteria) int {
	m := compile(c, t.Columns)
	if m.empty() {
		return len(t.Rows)
	}
	n := 0
	for _, r := range t.Rows {
		if m.match(r) {
			n++
		}
	}
	return n
}
