package aggregation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize_EmptyResultContract(t *testing.T) {
	filtered := Filter(scenarioTable(), Criteria{}.With(FieldState, "ZZ"))

	got := Summarize(filtered, DefaultDisplayLimits(), Options{})
	require.Equal(t, EmptySummary(), got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"total_units": 0, "total_value": 0, "avg_price": 0, "min_price": 0, "max_price": 0,
		"by_rv_type": [], "by_dealer_group": [], "by_manufacturer": [], "by_condition": [],
		"by_state": [], "by_region": [], "by_city": [], "by_county": []
	}`, string(body))
}

func TestSummarize_BreakdownsMatchAggregate(t *testing.T) {
	table := largeTable(3000)
	limits := DisplayLimits{State: 3}

	got := Summarize(table, limits, Options{})

	require.Equal(t, int64(3000), got.TotalUnits)
	require.Equal(t, Aggregate(table, FieldState, 3), got.ByState)
	require.Len(t, got.ByState, 3)
	require.Empty(t, got.ByRegion)

	var stateUnits int64
	for _, b := range Aggregate(table, FieldState, 0) {
		stateUnits += b.Count
	}
	require.Equal(t, got.TotalUnits, stateUnits)
}

func TestDisplayLimits_For(t *testing.T) {
	limits := DefaultDisplayLimits()
	require.Equal(t, 65, limits.For(FieldState))
	require.Equal(t, 0, limits.For(FieldCondition))
	require.Equal(t, 0, limits.For(FieldModel))
}

func TestBuildOverview(t *testing.T) {
	overview := BuildOverview(scenarioTable())

	require.Equal(t, int64(4), overview.TotalUnits)
	require.Equal(t, 200.0, overview.AvgPrice)
	require.Equal(t, 100.0, overview.MinPrice)
	require.Equal(t, 300.0, overview.MaxPrice)
	require.Equal(t, map[string]int64{"NEW": 3, "USED": 1}, overview.ByCondition)
	require.Equal(t, map[string]int64{UnknownLabel: 4}, overview.ByClass)
}

func TestBuildFilterOptions_SortedDistinct(t *testing.T) {
	opts := BuildFilterOptions(scenarioTable())

	require.Equal(t, []string{"CA", "TX"}, opts.States)
	require.Equal(t, []string{"NEW", "USED"}, opts.Conditions)
	require.Equal(t, []string{}, opts.Regions)
	require.Equal(t, []string{}, opts.RVTypes)
}
