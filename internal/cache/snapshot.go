package cache

import (
	"fmt"
	"strings"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

const wildcard = "*"

// SnapshotSpec selects single-filter snapshots to precompute: one value of a
// field, or every distinct value when All is set.
type SnapshotSpec struct {
	Field aggregation.Field
	Value string
	All   bool
}

func (s SnapshotSpec) String() string {
	if s.All {
		return s.Field.String() + ":" + wildcard
	}
	return s.Field.String() + ":" + s.Value
}

// ParseSnapshotSpecs parses "field:value" and "field:*" entries.
func ParseSnapshotSpecs(entries []string) ([]SnapshotSpec, error) {
	specs := make([]SnapshotSpec, 0, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, ":")
		if ok && strings.TrimSpace(value) == wildcard {
			f, err := aggregation.ParseField(name)
			if err != nil {
				return nil, fmt.Errorf("precompute entry %q: %w", entry, err)
			}
			specs = append(specs, SnapshotSpec{Field: f, All: true})
			continue
		}
		key, err := aggregation.ParseSnapshotKey(entry)
		if err != nil {
			return nil, fmt.Errorf("precompute entry: %w", err)
		}
		specs = append(specs, SnapshotSpec{Field: key.Field, Value: key.Value})
	}
	return specs, nil
}

// DefaultSnapshotSpecs covers both conditions and the common RV types.
func DefaultSnapshotSpecs() []SnapshotSpec {
	specs := []SnapshotSpec{
		{Field: aggregation.FieldCondition, Value: "NEW"},
		{Field: aggregation.FieldCondition, Value: "USED"},
	}
	for _, rvType := range []string{
		"TRAVEL TRAILER", "FIFTH WHEEL", "CLASS A", "CLASS B",
		"CLASS C", "OTHER", "CAMPING TRAILER", "PARK MODEL",
	} {
		specs = append(specs, SnapshotSpec{Field: aggregation.FieldRVType, Value: rvType})
	}
	return specs
}

// expandSnapshotKeys resolves specs against the built inventory. Fields the
// backend does not provide are skipped; duplicates collapse.
func expandSnapshotKeys(specs []SnapshotSpec, inventory aggregation.InventoryTable) []aggregation.SnapshotKey {
	seen := make(map[aggregation.SnapshotKey]struct{})
	keys := make([]aggregation.SnapshotKey, 0, len(specs))
	add := func(k aggregation.SnapshotKey) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, spec := range specs {
		if !inventory.Columns.Has(spec.Field) {
			continue
		}
		if !spec.All {
			add(aggregation.SnapshotKey{Field: spec.Field, Value: spec.Value})
			continue
		}
		for _, v := range aggregation.Distinct(inventory, spec.Field) {
			add(aggregation.SnapshotKey{Field: spec.Field, Value: v})
		}
	}
	return keys
}
