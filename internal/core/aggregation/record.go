package aggregation

import (
	"strconv"
	"strings"
	"time"
)

// Attributes holds the dimensional values a joined record carries. Nil means the
// value was null at the source or the dimension join missed.
type Attributes struct {
	Dealership   *string
	DealerGroup  *string
	RVType       *string
	Manufacturer *string
	Condition    *string
	State        *string
	Region       *string
	City         *string
	County       *string
	Model        *string
	Floorplan    *string
}

// Attr returns the value stored for f.
func (a Attributes) Attr(f Field) *string {
	switch f {
	case FieldDealership:
		return a.Dealership
	case FieldDealerGroup:
		return a.DealerGroup
	case FieldRVType:
		return a.RVType
	case FieldManufacturer:
		return a.Manufacturer
	case FieldCondition:
		return a.Condition
	case FieldState:
		return a.State
	case FieldRegion:
		return a.Region
	case FieldCity:
		return a.City
	case FieldCounty:
		return a.County
	case FieldModel:
		return a.Model
	case FieldFloorplan:
		return a.Floorplan
	}
	return nil
}

// InventoryRecord is one physical unit currently on a dealer lot.
type InventoryRecord struct {
	Attributes

	StockNumber string
	Price       *float64
	DaysOnLot   *int
	ModelYear   *int

	// Display-only values derived at join time.
	Title    string
	Location string
}

func (r InventoryRecord) Amount() *float64 { return r.Price }
func (r InventoryRecord) Days() *int       { return r.DaysOnLot }
func (r InventoryRecord) Date() *time.Time { return nil }

// SalesRecord is one completed sale event.
type SalesRecord struct {
	Attributes

	StockNumber  string
	SalePrice    *float64
	DaysToSell   *int
	ModelYear    *int
	CalendarDate *time.Time
	MonthYear    *string
}

func (r SalesRecord) Amount() *float64 { return r.SalePrice }
func (r SalesRecord) Days() *int       { return r.DaysToSell }
func (r SalesRecord) Date() *time.Time { return r.CalendarDate }

// Row is the shape the engine needs from a record: categorical attributes, the
// monetary amount aggregated into price statistics, an optional day count, and
// an optional calendar date used by range filters.
type Row interface {
	Attr(f Field) *string
	Amount() *float64
	Days() *int
	Date() *time.Time
}

// Table is an immutable collection of rows together with the columns its source provides.
type Table[R Row] struct {
	Rows    []R
	Columns ColumnSet
}

// Len returns the number of rows.
func (t Table[R]) Len() int { return len(t.Rows) }

// InventoryTable is the joined inventory collection.
type InventoryTable = Table[InventoryRecord]

// SalesTable is the joined sales collection.
type SalesTable = Table[SalesRecord]

// BuildTitle joins model year, manufacturer and model, skipping empty parts.
func BuildTitle(modelYear *int, manufacturer, model *string) string {
	parts := make([]string, 0, 3)
	if modelYear != nil {
		parts = append(parts, strconv.Itoa(*modelYear))
	}
	if manufacturer != nil && *manufacturer != "" {
		parts = append(parts, *manufacturer)
	}
	if model != nil && *model != "" {
		parts = append(parts, *model)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildLocation renders "city, state", falling back to state alone or "".
func BuildLocation(city, state *string) string {
	hasCity := city != nil && *city != ""
	hasState := state != nil && *state != ""
	switch {
	case hasCity && hasState:
		return *city + ", " + *state
	case hasState:
		return *state
	default:
		return ""
	}
}
