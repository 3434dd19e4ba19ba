package aggregation

import (
	"sort"
	"time"
)

// FilterOptions lists the distinct non-null values available for each filter.
type FilterOptions struct {
	RVTypes       []string `json:"rv_types"`
	States        []string `json:"states"`
	Regions       []string `json:"regions"`
	Cities        []string `json:"cities"`
	Conditions    []string `json:"conditions"`
	DealerGroups  []string `json:"dealer_groups"`
	Manufacturers []string `json:"manufacturers"`
	Models        []string `json:"models"`
	Floorplans    []string `json:"floorplans"`
}

// Distinct returns the sorted distinct non-null values of f, or an empty slice
// when t lacks the column.
func Distinct[R Row](t Table[R], f Field) []string {
	if !t.Columns.Has(f) {
		return []string{}
	}
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if v := r.Attr(f); v != nil && *v != "" {
			seen[*v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// BuildFilterOptions collects filter values from the inventory.
func BuildFilterOptions(t InventoryTable) FilterOptions {
	return FilterOptions{
		RVTypes:       Distinct(t, FieldRVType),
		States:        Distinct(t, FieldState),
		Regions:       Distinct(t, FieldRegion),
		Cities:        Distinct(t, FieldCity),
		Conditions:    Distinct(t, FieldCondition),
		DealerGroups:  Distinct(t, FieldDealerGroup),
		Manufacturers: Distinct(t, FieldManufacturer),
		Models:        Distinct(t, FieldModel),
		Floorplans:    Distinct(t, FieldFloorplan),
	}
}

// DateRange is the span of sale dates. Both ends are nil when no sale has a date.
type DateRange struct {
	Min *time.Time
	Max *time.Time
}

// SalesDateRange scans t for its earliest and latest calendar dates.
func SalesDateRange(t SalesTable) DateRange {
	var dr DateRange
	if !t.Columns.HasColumn(ColDate) {
		return dr
	}
	for _, r := range t.Rows {
		if r.CalendarDate == nil {
			continue
		}
		d := DayOf(*r.CalendarDate)
		if dr.Min == nil || d.Before(*dr.Min) {
			dr.Min = &d
		}
		if dr.Max == nil || d.After(*dr.Max) {
			dr.Max = &d
		}
	}
	return dr
}

// Overview is the compact inventory summary: distinct counts and per-class and
// per-condition unit counts.
type Overview struct {
	TotalUnits      int64            `json:"total_units"`
	UniqueMakes     int              `json:"unique_makes"`
	UniqueModels    int              `json:"unique_models"`
	DealersWithData int              `json:"dealers_with_data"`
	AvgPrice        float64          `json:"avg_price"`
	MinPrice        float64          `json:"min_price"`
	MaxPrice        float64          `json:"max_price"`
	ByClass         map[string]int64 `json:"by_class"`
	ByCondition     map[string]int64 `json:"by_condition"`
}

// BuildOverview computes the compact summary of t.
func BuildOverview(t InventoryTable) Overview {
	totals := ComputeTotals(t)
	out := Overview{
		TotalUnits:      totals.Units,
		UniqueMakes:     len(Distinct(t, FieldManufacturer)),
		UniqueModels:    len(Distinct(t, FieldModel)),
		DealersWithData: len(Distinct(t, FieldDealership)),
		AvgPrice:        totals.AvgPrice,
		MinPrice:        totals.MinPrice,
		MaxPrice:        totals.MaxPrice,
		ByClass:         map[string]int64{},
		ByCondition:     map[string]int64{},
	}
	for _, b := range Aggregate(t, FieldRVType, 0) {
		out.ByClass[b.Name] = b.Count
	}
	for _, b := range Aggregate(t, FieldCondition, 0) {
		out.ByCondition[b.Name] = b.Count
	}
	return out
}
