package aggregation

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAggregate_ScenarioNewByState(t *testing.T) {
	filtered := Filter(scenarioTable(), Criteria{}.With(FieldCondition, "NEW"))

	got := Aggregate(filtered, FieldState, 0)

	require.Equal(t, []Bucket{
		{Name: "TX", Count: 2, TotalValue: 200, AvgPrice: 200, MinPrice: 200, MaxPrice: 200},
		{Name: "CA", Count: 1, TotalValue: 100, AvgPrice: 100, MinPrice: 100, MaxPrice: 100},
	}, got)

	totals := ComputeTotals(filtered)
	require.Equal(t, int64(3), totals.Units)
	require.Equal(t, 300.0, totals.TotalValue)
	require.Equal(t, 150.0, totals.AvgPrice)
}

func TestAggregate_OrderingAndLabels(t *testing.T) {
	table := InventoryTable{
		Rows: []InventoryRecord{
			{StockNumber: "1", Attributes: Attributes{Manufacturer: strPtr("Winnebago")}},
			{StockNumber: "2", Attributes: Attributes{Manufacturer: strPtr("Airstream")}},
			{StockNumber: "3"},
			{StockNumber: "4", Attributes: Attributes{Manufacturer: strPtr("Winnebago")}},
		},
		Columns: AllColumns,
	}

	got := Aggregate(table, FieldManufacturer, 0)

	names := []string{}
	for _, b := range got {
		names = append(names, b.Name)
	}
	require.Equal(t, []string{"Winnebago", "Airstream", UnknownLabel}, names)
	require.Equal(t, 0.0, got[1].AvgPrice)
	require.Equal(t, 0.0, got[1].MinPrice)
	require.Equal(t, 0.0, got[1].MaxPrice)
}

func TestAggregate_LimitTruncatesBucketsOnly(t *testing.T) {
	table := scenarioTable()

	limited := Aggregate(table, FieldState, 1)
	require.Len(t, limited, 1)
	require.Equal(t, "CA", limited[0].Name)

	require.Equal(t, int64(4), ComputeTotals(table).Units)
}

func TestAggregate_MissingColumnReturnsEmptyList(t *testing.T) {
	got := Aggregate(scenarioTable(), FieldRegion, 0)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAggregate_AvgDaysOnLotOnlyWhenColumnPresent(t *testing.T) {
	table := InventoryTable{
		Rows: []InventoryRecord{
			{StockNumber: "1", DaysOnLot: intPtr(10), Attributes: Attributes{State: strPtr("CA")}},
			{StockNumber: "2", DaysOnLot: intPtr(30), Attributes: Attributes{State: strPtr("CA")}},
		},
		Columns: AllColumns,
	}

	got := Aggregate(table, FieldState, 0)
	require.NotNil(t, got[0].AvgDaysOnLot)
	require.Equal(t, 20.0, *got[0].AvgDaysOnLot)

	table.Columns = AllColumns &^ (1 << uint(ColDaysOnLot))
	got = Aggregate(table, FieldState, 0)
	require.Nil(t, got[0].AvgDaysOnLot)
}

func TestCombineWeighted_UsesCountWeights(t *testing.T) {
	merged := CombineWeighted([]Partial{
		{Name: "CLASS A", Count: 3, PricedCount: 3, AvgPrice: decimal.NewFromInt(100), TotalValue: decimal.NewFromInt(300), MinPrice: decimal.NewFromInt(90), MaxPrice: decimal.NewFromInt(110)},
		{Name: "CLASS A", Count: 1, PricedCount: 1, AvgPrice: decimal.NewFromInt(200), TotalValue: decimal.NewFromInt(200), MinPrice: decimal.NewFromInt(200), MaxPrice: decimal.NewFromInt(200)},
	})

	require.Equal(t, 125.0, merged.AvgPrice)
	require.NotEqual(t, 150.0, merged.AvgPrice)
	require.Equal(t, int64(4), merged.Count)
	require.Equal(t, 500.0, merged.TotalValue)
	require.Equal(t, 90.0, merged.MinPrice)
	require.Equal(t, 200.0, merged.MaxPrice)
}

func TestCombineWeighted_SkipsUnpricedPartials(t *testing.T) {
	merged := CombineWeighted([]Partial{
		{Name: "USED", Count: 2},
		{Name: "USED", Count: 1, PricedCount: 1, AvgPrice: decimal.NewFromInt(50), TotalValue: decimal.NewFromInt(50), MinPrice: decimal.NewFromInt(50), MaxPrice: decimal.NewFromInt(50)},
	})

	require.Equal(t, int64(3), merged.Count)
	require.Equal(t, 50.0, merged.AvgPrice)
	require.Equal(t, 50.0, merged.MinPrice)
}

func largeTable(n int) InventoryTable {
	states := []string{"CA", "TX", "AZ", "FL", "MN"}
	rows := make([]InventoryRecord, 0, n)
	for i := 0; i < n; i++ {
		var price *float64
		if i%7 != 0 {
			price = floatPtr(float64(10000 + (i*37)%90000))
		}
		rows = append(rows, InventoryRecord{
			StockNumber: fmt.Sprintf("S%05d", i),
			Price:       price,
			DaysOnLot:   intPtr(i % 120),
			Attributes:  Attributes{State: strPtr(states[(i*i)%len(states)])},
		})
	}
	return InventoryTable{Rows: rows, Columns: AllColumns}
}

func TestAggregateWith_ChunkedMatchesSequential(t *testing.T) {
	table := largeTable(5000)

	sequential := Aggregate(table, FieldState, 0)
	chunked := AggregateWith(table, FieldState, 0, Options{ParallelThreshold: 1, ChunkSize: 333, Workers: 4})

	require.Len(t, chunked, len(sequential))
	for i := range sequential {
		require.Equal(t, sequential[i].Name, chunked[i].Name)
		require.Equal(t, sequential[i].Count, chunked[i].Count)
		require.Equal(t, sequential[i].TotalValue, chunked[i].TotalValue)
		require.Equal(t, sequential[i].MinPrice, chunked[i].MinPrice)
		require.Equal(t, sequential[i].MaxPrice, chunked[i].MaxPrice)
		require.InDelta(t, sequential[i].AvgPrice, chunked[i].AvgPrice, 1e-6)
	}

	again := AggregateWith(table, FieldState, 0, Options{ParallelThreshold: 1, ChunkSize: 333, Workers: 1})
	require.Equal(t, chunked, again)
}

func TestAggregate_AvgConsistency(t *testing.T) {
	table := largeTable(2000)

	for _, f := range []Field{FieldState, FieldCondition, FieldRVType} {
		for _, b := range Aggregate(table, f, 0) {
			var priced int64
			for _, r := range table.Rows {
				if groupKey(r.Attr(f)) == b.Name && r.Price != nil {
					priced++
				}
			}
			if priced == 0 {
				continue
			}
			require.Less(t, math.Abs(b.AvgPrice-b.TotalValue/float64(priced)), 1e-6, "bucket %s", b.Name)
		}
	}
}
