package projection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	v1 "github.com/rvmarket-lab/rv-intel/internal/api/v1"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	httperr "github.com/rvmarket-lab/rv-intel/internal/core/errors"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/stretchr/testify/require"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers_StatusMapping(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := newRouter(svc)

	tests := []struct {
		name          string
		target        string
		wantStatus    int
		wantErrorType string
	}{
		{name: "filters", target: "/filters", wantStatus: http.StatusOK},
		{name: "inventory default limit", target: "/inventory", wantStatus: http.StatusOK},
		{name: "limit below range", target: "/inventory?limit=0", wantStatus: http.StatusBadRequest, wantErrorType: httperr.HttpInvalidQueryError},
		{name: "limit above range", target: "/inventory?limit=10001", wantStatus: http.StatusBadRequest, wantErrorType: httperr.HttpInvalidQueryError},
		{name: "malformed price", target: "/inventory/aggregated?min_price=cheap", wantStatus: http.StatusBadRequest, wantErrorType: httperr.HttpInvalidQueryError},
		{name: "malformed date is ignored", target: "/inventory/sales-velocity?start_date=yesterday", wantStatus: http.StatusOK},
		{name: "unknown value is an empty success", target: "/inventory/aggregated?state=ZZ", wantStatus: http.StatusOK},
		{name: "unsupported agg field", target: "/inventory/agg/county", wantStatus: http.StatusNotFound, wantErrorType: httperr.HttpUnknownFieldError},
		{name: "agg limit must be positive", target: "/inventory/agg/state?limit=-1", wantStatus: http.StatusBadRequest, wantErrorType: httperr.HttpInvalidQueryError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, tc.target)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantErrorType != "" {
				var body httperr.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, tc.wantErrorType, body.ErrorType)
			}
		})
	}
}

func TestHandlers_CacheNotReady(t *testing.T) {
	r := newRouter(NewService(cache.New(nil), nil))

	for _, target := range Endpoints() {
		target = strings.Replace(target, ":field", "state", 1)
		t.Run(target, func(t *testing.T) {
			w := get(r, target)
			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			require.Equal(t, retryAfterSeconds, w.Header().Get("Retry-After"))

			var body httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, httperr.HttpCacheNotReadyError, body.ErrorType)
		})
	}
}

func TestHandleAggregated_EmptyContract(t *testing.T) {
	svc, _, _ := newTestService(t)
	w := get(newRouter(svc), "/inventory/aggregated?state=ZZ")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, metrics.TierComputed, w.Header().Get(tierHeader))
	require.Contains(t, w.Body.String(), `"by_region":[]`)
	require.Contains(t, w.Body.String(), `"min_price":0`)

	var got aggregation.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, aggregation.EmptySummary(), got)
}

func TestHandleAggregated_AliasesAndMultiValues(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := newRouter(svc)

	w := get(r, "/inventory/aggregated?rv_class=CLASS%20A")
	require.Equal(t, http.StatusOK, w.Code)
	var got aggregation.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.TotalUnits)

	w = get(r, "/inventory/aggregated?state=CA,TX")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, int64(4), got.TotalUnits)

	w = get(r, "/inventory/aggregated?state=CA&condition=USED")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.TotalUnits)
	require.Equal(t, 300.0, got.TotalValue)

	w = get(r, "/inventory/aggregated?condition=NEW")
	require.Equal(t, metrics.TierSnapshot, w.Header().Get(tierHeader))
}

func TestHandlers_DateBoundsOnlyNarrowSales(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := newRouter(svc)

	tests := []struct {
		name      string
		target    string
		wantUnits int64
	}{
		{name: "start date", target: "/inventory/aggregated?start_date=2024-01-01", wantUnits: 4},
		{name: "end date with a filter", target: "/inventory/aggregated?condition=NEW&end_date=2030-01-01", wantUnits: 3},
		{name: "window before any sale", target: "/inventory/aggregated?start_date=1999-01-01&end_date=1999-12-31", wantUnits: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, tc.target)
			require.Equal(t, http.StatusOK, w.Code)
			var got aggregation.Summary
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			require.Equal(t, tc.wantUnits, got.TotalUnits)
		})
	}

	w := get(r, "/inventory?end_date=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)
	var page v1.InventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 4, page.TotalMatched)

	w = get(r, "/inventory/export.csv?start_date=2024-01-01")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, strings.Split(strings.TrimSpace(w.Body.String()), "\n"), 5)

	// Sales still honour the bounds.
	w = get(r, "/inventory/sales-velocity?start_date=2024-02-01")
	require.Equal(t, http.StatusOK, w.Code)
	var velocity aggregation.Velocity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &velocity))
	require.Equal(t, int64(2), velocity.TotalSold)
}

func TestHandleInventory(t *testing.T) {
	svc, _, _ := newTestService(t)
	w := get(newRouter(svc), "/inventory?dealer=Lakeside%20RV&limit=5")
	require.Equal(t, http.StatusOK, w.Code)

	var got v1.InventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, 2, got.Total)
	require.Equal(t, "A2", got.Items[0].StockNumber)
	require.Equal(t, "Lakeside RV", *got.Items[0].DealerSource)
	require.Equal(t, "2023", *got.Items[0].Year)
}

func TestHandleExport(t *testing.T) {
	svc, _, _ := newTestService(t)
	w := get(newRouter(svc), "/inventory/export.csv?condition=NEW")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, strings.Join(exportHeader, ","), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "A3,2024 Jayco Jay Flight,2024,Jayco,"))
	require.True(t, strings.HasPrefix(lines[2], "A1,"))
	require.True(t, strings.HasPrefix(lines[3], "A4,"))
	require.Contains(t, lines[3], "NEW,,,Lone Star RV")
}

func TestHandlers_Lookups(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := newRouter(svc)

	tests := []struct {
		target string
		want   string
	}{
		{target: "/dealers", want: `{"dealers":["Lakeside RV","Lone Star RV"],"count":2}`},
		{target: "/counts", want: `{"fact_inventory":4,"fact_sales":3,"dim_product_models":2,"dim_products":0,"dim_dealerships":2,"dim_dates":2}`},
		{target: "/inventory/sales-date-range", want: `{"min_date":"2024-01-05","max_date":"2024-02-10"}`},
		{target: "/inventory/agg/state?limit=1", want: `{"total_sample":4,"by_state":[{"name":"CA","count":2,"total_value":400,"avg_price":200,"min_price":100,"max_price":300,"avg_days_on_lot":7}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			w := get(r, tc.target)
			require.Equal(t, http.StatusOK, w.Code)
			require.JSONEq(t, tc.want, w.Body.String())
		})
	}

	w := get(r, "/filters")
	var opts aggregation.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	require.Equal(t, []string{"CLASS A", "TRAVEL TRAILER"}, opts.RVTypes)
	require.Equal(t, []string{"South", "West"}, opts.Regions)
	require.Equal(t, []string{}, opts.Floorplans)
}
