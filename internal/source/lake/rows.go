package lake

import (
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/source"
)

// Table directory names under the lake root.
const (
	tableInventory     = "fact_inventory_current"
	tableSales         = "fact_inventory_sales"
	tableProductModels = "dim_product_model"
	tableProducts      = "dim_product"
	tableDealerships   = "dim_dealership"
	tableDates         = "dim_date"
)

type inventoryRow struct {
	StockNumber     *string  `parquet:"stock_number,optional"`
	Price           *float64 `parquet:"price,optional"`
	Condition       *string  `parquet:"condition,optional"`
	DaysOnLot       *int64   `parquet:"days_on_lot,optional"`
	ProductModelKey *int64   `parquet:"dim_product_model_skey,optional"`
	ProductKey      *int64   `parquet:"dim_product_skey,optional"`
	DealershipKey   *int64   `parquet:"dim_dealership_skey,optional"`
}

func (r inventoryRow) fact() source.InventoryFact {
	return source.InventoryFact{
		StockNumber:     deref(r.StockNumber),
		Price:           r.Price,
		Condition:       r.Condition,
		DaysOnLot:       toInt(r.DaysOnLot),
		ProductModelKey: r.ProductModelKey,
		ProductKey:      r.ProductKey,
		DealershipKey:   r.DealershipKey,
	}
}

type salesRow struct {
	StockNumber     *string  `parquet:"stock_number,optional"`
	Price           *float64 `parquet:"price,optional"`
	Condition       *string  `parquet:"condition,optional"`
	DaysToSell      *int64   `parquet:"days_to_sell,optional"`
	ProductModelKey *int64   `parquet:"dim_product_model_skey,optional"`
	ProductKey      *int64   `parquet:"dim_product_skey,optional"`
	DealershipKey   *int64   `parquet:"dim_dealership_skey,optional"`
	SoldDateKey     *int64   `parquet:"sold_date_skey,optional"`
}

func (r salesRow) fact() source.SalesFact {
	return source.SalesFact{
		StockNumber:     deref(r.StockNumber),
		SalePrice:       r.Price,
		Condition:       r.Condition,
		DaysToSell:      toInt(r.DaysToSell),
		ProductModelKey: r.ProductModelKey,
		ProductKey:      r.ProductKey,
		DealershipKey:   r.DealershipKey,
		SoldDateKey:     r.SoldDateKey,
	}
}

type productModelRow struct {
	Key          int64   `parquet:"dim_product_model_skey"`
	RVType       *string `parquet:"rv_type,optional"`
	Manufacturer *string `parquet:"manufacturer,optional"`
	Model        *string `parquet:"model,optional"`
	ModelYear    *int64  `parquet:"model_year,optional"`
}

type productRow struct {
	Key       int64   `parquet:"dim_product_skey"`
	Floorplan *string `parquet:"floorplan,optional"`
}

type dealershipRow struct {
	Key         int64   `parquet:"dim_dealership_skey"`
	Dealership  *string `parquet:"dealership,optional"`
	DealerGroup *string `parquet:"dealer_group,optional"`
	State       *string `parquet:"state,optional"`
	Region      *string `parquet:"region,optional"`
	City        *string `parquet:"city,optional"`
	County      *string `parquet:"county,optional"`
}

// dateRow stores calendar_date as a DATE: days since the Unix epoch.
type dateRow struct {
	Key          int64   `parquet:"dim_date_skey"`
	CalendarDate *int32  `parquet:"calendar_date,optional,date"`
	MonthYear    *string `parquet:"month_year,optional"`
}

func (r dateRow) calendarDate() source.CalendarDate {
	out := source.CalendarDate{Key: r.Key, MonthYear: r.MonthYear}
	if r.CalendarDate != nil {
		t := time.Unix(int64(*r.CalendarDate)*86400, 0).UTC()
		out.Date = &t
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toInt(v *int64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
