package aggregation

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Criteria selects records. Values within one field are OR-ed; fields, the price
// range and the date range are AND-ed. Bounds are inclusive.
type Criteria struct {
	Values    map[Field][]string
	MinPrice  *float64
	MaxPrice  *float64
	StartDate *time.Time
	EndDate   *time.Time
}

// With returns a copy of c that additionally requires f to be one of values.
// Blank values are dropped; a field left without values is not constrained.
func (c Criteria) With(f Field, values ...string) Criteria {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	out := c
	out.Values = make(map[Field][]string, len(c.Values)+1)
	for k, v := range c.Values {
		out.Values[k] = v
	}
	if len(kept) == 0 {
		delete(out.Values, f)
		return out
	}
	out.Values[f] = kept
	return out
}

// HasRange reports whether a price or date bound is set.
func (c Criteria) HasRange() bool {
	return c.MinPrice != nil || c.MaxPrice != nil || c.StartDate != nil || c.EndDate != nil
}

// categoricalCount counts fields constrained by at least one value.
func (c Criteria) categoricalCount() int {
	n := 0
	for _, values := range c.Values {
		if len(values) > 0 {
			n++
		}
	}
	return n
}

// IsEmpty reports whether c selects every record.
func (c Criteria) IsEmpty() bool {
	return c.categoricalCount() == 0 && !c.HasRange()
}

// SingleCategorical returns the snapshot key when c is exactly one field equal to
// exactly one value with no range bounds.
func (c Criteria) SingleCategorical() (SnapshotKey, bool) {
	if c.HasRange() || c.categoricalCount() != 1 {
		return SnapshotKey{}, false
	}
	for f, values := range c.Values {
		if len(values) == 1 {
			return SnapshotKey{Field: f, Value: values[0]}, true
		}
	}
	return SnapshotKey{}, false
}

// Key renders c canonically: equal criteria produce equal keys regardless of the
// order values were supplied in.
func (c Criteria) Key() string {
	fields := make([]Field, 0, len(c.Values))
	for f, values := range c.Values {
		if len(values) > 0 {
			fields = append(fields, f)
		}
	}
	slices.Sort(fields)

	var b strings.Builder
	for _, f := range fields {
		values := slices.Clone(c.Values[f])
		sort.Strings(values)
		values = slices.Compact(values)
		b.WriteString(f.String())
		b.WriteByte('=')
		b.WriteString(strings.Join(values, "\x1f"))
		b.WriteByte(';')
	}
	writeFloatBound(&b, "min_price", c.MinPrice)
	writeFloatBound(&b, "max_price", c.MaxPrice)
	writeDayBound(&b, "start_date", c.StartDate)
	writeDayBound(&b, "end_date", c.EndDate)
	return b.String()
}

func writeFloatBound(b *strings.Builder, name string, v *float64) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s=%s;", name, strconv.FormatFloat(*v, 'g', -1, 64))
}

func writeDayBound(b *strings.Builder, name string, v *time.Time) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "%s=%s;", name, v.UTC().Format(DayLayout))
}

// SnapshotKey names a precomputed single-filter result, rendered "field:value".
type SnapshotKey struct {
	Field Field
	Value string
}

func (k SnapshotKey) String() string {
	return k.Field.String() + ":" + k.Value
}

// Criteria returns the filter the snapshot stands for.
func (k SnapshotKey) Criteria() Criteria {
	return Criteria{}.With(k.Field, k.Value)
}

// ParseSnapshotKey parses "field:value". The value may itself contain colons.
func ParseSnapshotKey(s string) (SnapshotKey, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return SnapshotKey{}, fmt.Errorf("snapshot key %q must be field:value", s)
	}
	f, err := ParseField(name)
	if err != nil {
		return SnapshotKey{}, fmt.Errorf("snapshot key %q: %w", s, err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return SnapshotKey{}, fmt.Errorf("snapshot key %q has an empty value", s)
	}
	return SnapshotKey{Field: f, Value: value}, nil
}
