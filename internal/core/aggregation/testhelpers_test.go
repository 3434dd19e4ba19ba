package aggregation

import "time"

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func dayPtr(s string) *time.Time {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func inv(stock, state, condition string, price *float64) InventoryRecord {
	return InventoryRecord{
		StockNumber: stock,
		Price:       price,
		Attributes: Attributes{
			State:     strPtr(state),
			Condition: strPtr(condition),
		},
	}
}

// scenarioTable is the four-record collection used across the property tests.
func scenarioTable() InventoryTable {
	return InventoryTable{
		Rows: []InventoryRecord{
			inv("A1", "CA", "NEW", floatPtr(100)),
			inv("A2", "CA", "USED", floatPtr(300)),
			inv("A3", "TX", "NEW", floatPtr(200)),
			inv("A4", "TX", "NEW", nil),
		},
		Columns: AllColumns.Without(FieldRegion),
	}
}
