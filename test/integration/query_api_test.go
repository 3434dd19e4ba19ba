//go:build integration

package integration

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"

	v1 "github.com/rvmarket-lab/rv-intel/internal/api/v1"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/stretchr/testify/require"
)

func TestQueryAPI_AggregatedTiersAgree(t *testing.T) {
	h := startHarness(t, loadFixture(t))
	defer h.close(t)
	h.build(t)

	tests := []struct {
		name      string
		query     string
		wantTier  string
		wantUnits int64
		wantValue float64
	}{
		{"unfiltered", "", "unfiltered", 12, 1127445},
		{"condition snapshot", "?condition=NEW", "snapshot", 8, 38995 + 41500 + 72400 + 289000 + 112000 + 98750 + 154900},
		{"state snapshot", "?state=CA", "snapshot", 5, 38995 + 24900 + 289000 + 98750 + 154900},
		{"computed", "?state=CA&condition=NEW", "computed", 4, 581645},
		{"no match", "?state=WY", "computed", 0, 0},
		{"price bounds", "?min_price=100000&max_price=200000", "computed", 3, 198500 + 112000 + 154900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got aggregation.Summary
			status, header := h.getJSON(t, "/inventory/aggregated"+tt.query, &got)
			require.Equal(t, http.StatusOK, status)
			require.Equal(t, tt.wantTier, header.Get("X-Cache-Tier"))
			require.Equal(t, tt.wantUnits, got.TotalUnits)
			require.InDelta(t, tt.wantValue, got.TotalValue, 0.001)
			require.NotNil(t, got.ByRVType)
		})
	}
}

func TestQueryAPI_SalesVelocity(t *testing.T) {
	h := startHarness(t, loadFixture(t))
	defer h.close(t)
	h.build(t)

	var all aggregation.Velocity
	status, header := h.getJSON(t, "/inventory/sales-velocity", &all)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "unfiltered", header.Get("X-Cache-Tier"))
	require.Equal(t, int64(8), all.TotalSold)
	require.Len(t, all.ByMonth, 3)
	require.Equal(t, "2024-01", all.ByMonth[0].Month)

	var trailers aggregation.Velocity
	status, header = h.getJSON(t, "/inventory/sales-velocity?rv_type=TRAVEL%20TRAILER", &trailers)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "computed", header.Get("X-Cache-Tier"))
	require.Equal(t, int64(4), trailers.TotalSold)
	require.Equal(t, int64(18), trailers.MinDaysToSell)
	require.Equal(t, int64(61), trailers.MaxDaysToSell)

	var window aggregation.Velocity
	status, _ = h.getJSON(t, "/inventory/sales-velocity?start_date=2024-03-01&end_date=2024-03-31", &window)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(3), window.TotalSold)

	var dr v1.SalesDateRangeResponse
	status, _ = h.getJSON(t, "/inventory/sales-date-range", &dr)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "2024-01-05", *dr.MinDate)
	require.Equal(t, "2024-03-20", *dr.MaxDate)
}

func TestQueryAPI_InventoryAndExport(t *testing.T) {
	h := startHarness(t, loadFixture(t))
	defer h.close(t)
	h.build(t)

	var page v1.InventoryResponse
	status, _ := h.getJSON(t, "/inventory?limit=3", &page)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 12, page.TotalMatched)
	stocks := []string{}
	for _, item := range page.Items {
		stocks = append(stocks, item.StockNumber)
	}
	require.Equal(t, []string{"U06", "U07", "U10"}, stocks)

	status, _, body := h.get(t, "/inventory?limit=0")
	require.Equal(t, http.StatusBadRequest, status, string(body))

	status, header, body := h.get(t, "/inventory/export.csv?state=TX")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, header.Get("Content-Type"), "text/csv")
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+4)
	require.Equal(t, "stock_number", rows[0][0])
}

func TestQueryAPI_Lookups(t *testing.T) {
	h := startHarness(t, loadFixture(t))
	defer h.close(t)
	h.build(t)

	var dealers v1.DealersResponse
	status, _ := h.getJSON(t, "/dealers", &dealers)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"Bayview RV", "Lakeside RV", "Lone Star RV", "Summit Outdoors"}, dealers.Dealers)
	require.Equal(t, 4, dealers.Count)

	var filters aggregation.FilterOptions
	status, _ = h.getJSON(t, "/filters", &filters)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"CA", "CO", "TX"}, filters.States)
	require.Equal(t, []string{"NEW", "USED"}, filters.Conditions)

	var byState struct {
		TotalSample int64                `json:"total_sample"`
		ByState     []aggregation.Bucket `json:"by_state"`
	}
	status, _ = h.getJSON(t, "/inventory/agg/state?limit=2", &byState)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(12), byState.TotalSample)
	require.Len(t, byState.ByState, 2)
	require.Equal(t, "CA", byState.ByState[0].Name)
	require.Equal(t, int64(5), byState.ByState[0].Count)
	require.InDelta(t, 606545.0, byState.ByState[0].TotalValue, 0.001)
	require.InDelta(t, 121309.0, byState.ByState[0].AvgPrice, 0.001)
	require.Equal(t, "TX", byState.ByState[1].Name)

	status, _, _ = h.get(t, "/inventory/agg/floorplan")
	require.Equal(t, http.StatusNotFound, status)
}
