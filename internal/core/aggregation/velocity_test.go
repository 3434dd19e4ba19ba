package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sale(stock, rvType string, days int, price float64, date string) SalesRecord {
	return SalesRecord{
		StockNumber:  stock,
		DaysToSell:   intPtr(days),
		SalePrice:    floatPtr(price),
		CalendarDate: dayPtr(date),
		Attributes:   Attributes{RVType: strPtr(rvType), Condition: strPtr("NEW")},
	}
}

func TestSalesVelocity_TravelTrailerScenario(t *testing.T) {
	sales := SalesTable{
		Rows: []SalesRecord{
			sale("S1", "TRAVEL TRAILER", 10, 30000, "2024-03-02"),
			sale("S2", "TRAVEL TRAILER", 20, 40000, "2024-01-15"),
			sale("S3", "TRAVEL TRAILER", 30, 50000, "2024-03-20"),
		},
		Columns: AllColumns,
	}

	got := SalesVelocity(sales, DefaultDisplayLimits())

	require.Equal(t, int64(3), got.TotalSold)
	require.Equal(t, 20.0, got.AvgDaysToSell)
	require.Equal(t, 20.0, got.MedianDaysToSell)
	require.Equal(t, int64(10), got.MinDaysToSell)
	require.Equal(t, int64(30), got.MaxDaysToSell)
	require.Equal(t, 40000.0, got.AvgSalePrice)
	require.Equal(t, 120000.0, got.TotalSalesValue)

	require.Len(t, got.ByRVType, 1)
	require.Equal(t, VelocityBucket{
		Name:             "TRAVEL TRAILER",
		SoldCount:        3,
		AvgDaysToSell:    20,
		MedianDaysToSell: 20,
		MinDaysToSell:    10,
		MaxDaysToSell:    30,
		AvgSalePrice:     40000,
		TotalSalesValue:  120000,
	}, got.ByRVType[0])
}

func TestSalesVelocity_MonthlyTrendIsChronological(t *testing.T) {
	sales := SalesTable{
		Rows: []SalesRecord{
			sale("S1", "CLASS A", 5, 100, "2024-03-02"),
			sale("S2", "CLASS A", 5, 100, "2024-03-09"),
			sale("S3", "CLASS A", 5, 100, "2024-03-10"),
			sale("S4", "CLASS C", 7, 100, "2023-12-31"),
			sale("S5", "CLASS C", 9, 100, "2024-01-01"),
			{StockNumber: "S6", Attributes: Attributes{RVType: strPtr("CLASS C")}},
		},
		Columns: AllColumns,
	}

	got := SalesVelocity(sales, DefaultDisplayLimits())

	months := []string{}
	for _, m := range got.ByMonth {
		months = append(months, m.Month)
	}
	require.Equal(t, []string{"2023-12", "2024-01", "2024-03"}, months)
	require.Equal(t, "Mar 2024", got.ByMonth[2].Label)
	require.Equal(t, int64(3), got.ByMonth[2].SoldCount)
	require.Equal(t, int64(6), got.TotalSold)

	// Count-sorted breakdown is unaffected by the time-sorted trend.
	require.Equal(t, "CLASS A", got.ByRVType[0].Name)
	require.Equal(t, int64(3), got.ByRVType[1].SoldCount)
}

func TestSalesVelocity_EvenMedianAndNullDays(t *testing.T) {
	sales := SalesTable{
		Rows: []SalesRecord{
			sale("S1", "OTHER", 10, 1, "2024-01-01"),
			sale("S2", "OTHER", 40, 1, "2024-01-01"),
			{StockNumber: "S3", Attributes: Attributes{RVType: strPtr("OTHER")}},
		},
		Columns: AllColumns,
	}

	got := SalesVelocity(sales, DefaultDisplayLimits())

	require.Equal(t, int64(3), got.TotalSold)
	require.Equal(t, 25.0, got.MedianDaysToSell)
	require.Equal(t, 25.0, got.AvgDaysToSell)
}

func TestSalesVelocity_Empty(t *testing.T) {
	got := SalesVelocity(SalesTable{Columns: AllColumns}, DefaultDisplayLimits())
	require.Equal(t, EmptyVelocity(), got)
	require.NotNil(t, got.ByMonth)
}

func TestSalesDateRange(t *testing.T) {
	sales := SalesTable{
		Rows: []SalesRecord{
			sale("S1", "OTHER", 1, 1, "2024-05-01"),
			sale("S2", "OTHER", 1, 1, "2023-02-11"),
			{StockNumber: "S3"},
		},
		Columns: AllColumns,
	}

	dr := SalesDateRange(sales)
	require.Equal(t, "2023-02-11", dr.Min.Format(DayLayout))
	require.Equal(t, "2024-05-01", dr.Max.Format(DayLayout))

	empty := SalesDateRange(SalesTable{Columns: AllColumns})
	require.Nil(t, empty.Min)
	require.Nil(t, empty.Max)
}
