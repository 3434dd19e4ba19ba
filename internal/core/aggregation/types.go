package aggregation

import (
	"fmt"
	"strings"
)

// Operators folded into every bucket. Averages are derived from sum and count
// when a bucket is finalized, so they are not registered as operators.
const (
	OpCount = "count"
	OpSum   = "sum"
	OpMin   = "min"
	OpMax   = "max"
)

// UnknownLabel names the bucket that collects records with a null group-by value.
const UnknownLabel = "Unknown"

// Field is a categorical attribute of a joined record that can be filtered or grouped on.
type Field uint8

const (
	FieldDealership Field = iota
	FieldDealerGroup
	FieldRVType
	FieldManufacturer
	FieldCondition
	FieldState
	FieldRegion
	FieldCity
	FieldCounty
	FieldModel
	FieldFloorplan

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldDealership:   "dealership",
	FieldDealerGroup:  "dealer_group",
	FieldRVType:       "rv_type",
	FieldManufacturer: "manufacturer",
	FieldCondition:    "condition",
	FieldState:        "state",
	FieldRegion:       "region",
	FieldCity:         "city",
	FieldCounty:       "county",
	FieldModel:        "model",
	FieldFloorplan:    "floorplan",
}

// fieldAliases maps HTTP parameter names onto canonical field names.
var fieldAliases = map[string]Field{
	"dealer":   FieldDealership,
	"rv_class": FieldRVType,
}

func (f Field) String() string {
	if f >= fieldCount {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return fieldNames[f]
}

// Fields returns every known field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseField resolves a canonical field name or one of its wire aliases.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if f, ok := fieldAliases[name]; ok {
		return f, nil
	}
	for f := Field(0); f < fieldCount; f++ {
		if fieldNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Column identifies a column a data source may or may not provide.
// Categorical columns share their numbering with Field.
type Column uint8

const (
	ColPrice Column = Column(fieldCount) + iota
	ColDaysOnLot
	ColDaysToSell
	ColDate
)

// ColumnSet is the explicit capability set of a table: a filter or group-by on a
// column outside the set is a no-op rather than an error.
type ColumnSet uint32

// AllColumns declares every optional column present.
const AllColumns ColumnSet = 1<<(uint(ColDate)+1) - 1

// NewColumnSet builds a set from categorical fields.
func NewColumnSet(fields ...Field) ColumnSet {
	var cs ColumnSet
	for _, f := range fields {
		cs = cs.With(f)
	}
	return cs
}

// With returns a copy of the set including the field's column.
func (cs ColumnSet) With(f Field) ColumnSet { return cs | 1<<uint(f) }

// WithColumn returns a copy of the set including a non-categorical column.
func (cs ColumnSet) WithColumn(c Column) ColumnSet { return cs | 1<<uint(c) }

// Without returns a copy of the set excluding the field's column.
func (cs ColumnSet) Without(f Field) ColumnSet { return cs &^ (1 << uint(f)) }

// WithoutColumn returns a copy of the set excluding a non-categorical column.
func (cs ColumnSet) WithoutColumn(c Column) ColumnSet { return cs &^ (1 << uint(c)) }

// ForInventory narrows a backend's column set to what an inventory record carries.
// Units on a lot have no sale date, so date bounds become no-ops for them.
func (cs ColumnSet) ForInventory() ColumnSet {
	return cs.WithoutColumn(ColDate).WithoutColumn(ColDaysToSell)
}

// ForSales narrows a backend's column set to what a sales record carries.
func (cs ColumnSet) ForSales() ColumnSet {
	return cs.WithoutColumn(ColDaysOnLot)
}

// Has reports whether the field's column is present.
func (cs ColumnSet) Has(f Field) bool { return cs&(1<<uint(f)) != 0 }

// HasColumn reports whether a non-categorical column is present.
func (cs ColumnSet) HasColumn(c Column) bool { return cs&(1<<uint(c)) != 0 }

// ParseColumnSet builds a set from column names; price, days_on_lot, days_to_sell
// and calendar_date name the non-categorical columns.
func ParseColumnSet(names []string) (ColumnSet, error) {
	var cs ColumnSet
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "price", "sale_price":
			cs = cs.WithColumn(ColPrice)
		case "days_on_lot":
			cs = cs.WithColumn(ColDaysOnLot)
		case "days_to_sell":
			cs = cs.WithColumn(ColDaysToSell)
		case "calendar_date", "date":
			cs = cs.WithColumn(ColDate)
		default:
			f, err := ParseField(name)
			if err != nil {
				return 0, err
			}
			cs = cs.With(f)
		}
	}
	return cs, nil
}
