package v1

import (
	"encoding/json"
	"strconv"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

// InventoryItem is one unit as listed by GET /inventory. Missing values are null.
type InventoryItem struct {
	StockNumber  string   `json:"stock_number"`
	Title        *string  `json:"title"`
	Year         *string  `json:"year"`
	Make         *string  `json:"make"`
	Model        *string  `json:"model"`
	Floorplan    *string  `json:"floorplan"`
	RVClass      *string  `json:"rv_class"`
	Condition    *string  `json:"condition"`
	SalePrice    *float64 `json:"sale_price"`
	Location     *string  `json:"location"`
	DealerSource *string  `json:"dealer_source"`
	DealerGroup  *string  `json:"dealer_group"`
	State        *string  `json:"state"`
	Region       *string  `json:"region"`
	City         *string  `json:"city"`
	County       *string  `json:"county"`
	DaysOnLot    *int     `json:"days_on_lot"`
}

// NewInventoryItem shapes a joined record for the wire.
func NewInventoryItem(r aggregation.InventoryRecord) InventoryItem {
	item := InventoryItem{
		StockNumber:  r.StockNumber,
		Title:        nonEmpty(r.Title),
		Make:         r.Manufacturer,
		Model:        r.Model,
		Floorplan:    r.Floorplan,
		RVClass:      r.RVType,
		Condition:    r.Condition,
		SalePrice:    r.Price,
		Location:     nonEmpty(r.Location),
		DealerSource: r.Dealership,
		DealerGroup:  r.DealerGroup,
		State:        r.State,
		Region:       r.Region,
		City:         r.City,
		County:       r.County,
		DaysOnLot:    r.DaysOnLot,
	}
	if r.ModelYear != nil {
		item.Year = nonEmpty(strconv.Itoa(*r.ModelYear))
	}
	return item
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// InventoryResponse is returned by GET /inventory. Total counts returned items;
// TotalMatched counts every unit that passed the filters.
type InventoryResponse struct {
	Items          []InventoryItem `json:"items"`
	Total          int             `json:"total"`
	TotalMatched   int             `json:"total_matched"`
	DealersQueried int             `json:"dealers_queried"`
}

// DealersResponse is returned by GET /dealers.
type DealersResponse struct {
	Dealers []string `json:"dealers"`
	Count   int      `json:"count"`
}

// CountsResponse is returned by GET /counts. Dimension counts are the rows
// resolved for the keys the facts reference, not the full upstream tables.
type CountsResponse struct {
	FactInventory    int `json:"fact_inventory"`
	FactSales        int `json:"fact_sales"`
	DimProductModels int `json:"dim_product_models"`
	DimProducts      int `json:"dim_products"`
	DimDealerships   int `json:"dim_dealerships"`
	DimDates         int `json:"dim_dates"`
}

// SummaryResponse is returned by GET /inventory/summary.
type SummaryResponse struct {
	Summary aggregation.Overview `json:"summary"`
}

// TotalsResponse is returned by GET /inventory/totals.
type TotalsResponse struct {
	TotalUnits  int64                `json:"total_units"`
	TotalValue  float64              `json:"total_value"`
	ByCondition []aggregation.Bucket `json:"by_condition"`
}

// FieldAggregateResponse is returned by GET /inventory/agg/:field. The bucket
// list is keyed "by_<field>".
type FieldAggregateResponse struct {
	Field       string
	TotalSample int
	Buckets     []aggregation.Bucket
}

func (r FieldAggregateResponse) MarshalJSON() ([]byte, error) {
	buckets := r.Buckets
	if buckets == nil {
		buckets = []aggregation.Bucket{}
	}
	return json.Marshal(map[string]interface{}{
		"total_sample":  r.TotalSample,
		"by_" + r.Field: buckets,
	})
}

// SalesDateRangeResponse is returned by GET /inventory/sales-date-range. Both
// dates are null when no sale carries a date.
type SalesDateRangeResponse struct {
	MinDate *string `json:"min_date"`
	MaxDate *string `json:"max_date"`
}

// NewSalesDateRangeResponse formats dr as YYYY-MM-DD.
func NewSalesDateRangeResponse(dr aggregation.DateRange) SalesDateRangeResponse {
	var out SalesDateRangeResponse
	if dr.Min != nil {
		s := dr.Min.Format(aggregation.DayLayout)
		out.MinDate = &s
	}
	if dr.Max != nil {
		s := dr.Max.Format(aggregation.DayLayout)
		out.MaxDate = &s
	}
	return out
}
