package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"rv_type", FieldRVType},
		{"RV_CLASS", FieldRVType},
		{"dealer", FieldDealership},
		{" dealer_group ", FieldDealerGroup},
		{"county", FieldCounty},
	}
	for _, tc := range tests {
		got, err := ParseField(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseField("color")
	require.Error(t, err)
}

func TestFields_RoundTripNames(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, int(fieldCount))
	for _, f := range fields {
		parsed, err := ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
}

func TestColumnSet(t *testing.T) {
	cs := NewColumnSet(FieldState, FieldCondition).WithColumn(ColPrice)

	require.True(t, cs.Has(FieldState))
	require.True(t, cs.HasColumn(ColPrice))
	require.False(t, cs.Has(FieldRegion))
	require.False(t, cs.HasColumn(ColDate))

	cs = cs.Without(FieldState)
	require.False(t, cs.Has(FieldState))

	for _, f := range Fields() {
		require.True(t, AllColumns.Has(f))
	}
	require.True(t, AllColumns.HasColumn(ColDate))
}

func TestColumnSet_PerTable(t *testing.T) {
	inv := AllColumns.ForInventory()
	require.False(t, inv.HasColumn(ColDate))
	require.False(t, inv.HasColumn(ColDaysToSell))
	require.True(t, inv.HasColumn(ColDaysOnLot))
	require.True(t, inv.HasColumn(ColPrice))
	require.True(t, inv.Has(FieldState))

	sales := AllColumns.ForSales()
	require.True(t, sales.HasColumn(ColDate))
	require.True(t, sales.HasColumn(ColDaysToSell))
	require.False(t, sales.HasColumn(ColDaysOnLot))

	// A date bound on an inventory table built from a full backend column set is a no-op.
	table := InventoryTable{
		Rows:    []InventoryRecord{{StockNumber: "A1"}, {StockNumber: "A2"}},
		Columns: inv,
	}
	require.Equal(t, 2, Count(table, Criteria{StartDate: dayPtr("2024-01-01")}))
}

func TestParseColumnSet(t *testing.T) {
	cs, err := ParseColumnSet([]string{"state", "sale_price", "calendar_date", "days_to_sell"})
	require.NoError(t, err)
	require.Equal(t, NewColumnSet(FieldState).WithColumn(ColPrice).WithColumn(ColDate).WithColumn(ColDaysToSell), cs)

	_, err = ParseColumnSet([]string{"state", "bogus"})
	require.Error(t, err)
}
