package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

// ErrUpstream marks a failed call to a backend during a cache build. A build that
// sees it must abort rather than serve partial data.
var ErrUpstream = errors.New("upstream fetch failed")

// Upstream wraps err as an upstream failure of op. Nil stays nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}

// InventoryFact is one row of fact_inventory_current: a unit on a lot, carrying
// surrogate keys into the dimension tables.
type InventoryFact struct {
	StockNumber     string   `json:"stock_number" yaml:"stock_number"`
	Price           *float64 `json:"price" yaml:"price"`
	Condition       *string  `json:"condition" yaml:"condition"`
	DaysOnLot       *int     `json:"days_on_lot" yaml:"days_on_lot"`
	ProductModelKey *int64   `json:"dim_product_model_skey" yaml:"dim_product_model_skey"`
	ProductKey      *int64   `json:"dim_product_skey" yaml:"dim_product_skey"`
	DealershipKey   *int64   `json:"dim_dealership_skey" yaml:"dim_dealership_skey"`
}

// SalesFact is one row of fact_inventory_sales.
type SalesFact struct {
	StockNumber     string   `json:"stock_number" yaml:"stock_number"`
	SalePrice       *float64 `json:"price" yaml:"price"`
	Condition       *string  `json:"condition" yaml:"condition"`
	DaysToSell      *int     `json:"days_to_sell" yaml:"days_to_sell"`
	ProductModelKey *int64   `json:"dim_product_model_skey" yaml:"dim_product_model_skey"`
	ProductKey      *int64   `json:"dim_product_skey" yaml:"dim_product_skey"`
	DealershipKey   *int64   `json:"dim_dealership_skey" yaml:"dim_dealership_skey"`
	SoldDateKey     *int64   `json:"sold_date_skey" yaml:"sold_date_skey"`
}

// ProductModel is a dim_product_model row.
type ProductModel struct {
	Key          int64   `json:"dim_product_model_skey" yaml:"dim_product_model_skey"`
	RVType       *string `json:"rv_type" yaml:"rv_type"`
	Manufacturer *string `json:"manufacturer" yaml:"manufacturer"`
	Model        *string `json:"model" yaml:"model"`
	ModelYear    *int    `json:"model_year" yaml:"model_year"`
}

// Product is a dim_product row; it only contributes the floorplan.
type Product struct {
	Key       int64   `json:"dim_product_skey" yaml:"dim_product_skey"`
	Floorplan *string `json:"floorplan" yaml:"floorplan"`
}

// Dealership is a dim_dealership row.
type Dealership struct {
	Key         int64   `json:"dim_dealership_skey" yaml:"dim_dealership_skey"`
	Dealership  *string `json:"dealership" yaml:"dealership"`
	DealerGroup *string `json:"dealer_group" yaml:"dealer_group"`
	State       *string `json:"state" yaml:"state"`
	Region      *string `json:"region" yaml:"region"`
	City        *string `json:"city" yaml:"city"`
	County      *string `json:"county" yaml:"county"`
}

// CalendarDate is a dim_date row. Each backend decodes the date column itself
// because the wire encodings differ.
type CalendarDate struct {
	Key       int64
	Date      *time.Time
	MonthYear *string
}

// DimensionResolver maps surrogate keys to dimension rows. Keys without a row are
// absent from the result; that is not an error.
type DimensionResolver interface {
	ResolveProductModels(ctx context.Context, keys []int64) (map[int64]ProductModel, error)
	ResolveProducts(ctx context.Context, keys []int64) (map[int64]Product, error)
	ResolveDealerships(ctx context.Context, keys []int64) (map[int64]Dealership, error)
	ResolveDates(ctx context.Context, keys []int64) (map[int64]CalendarDate, error)
}

// FactSource returns complete fact collections, however many round trips that takes.
type FactSource interface {
	FetchInventory(ctx context.Context) ([]InventoryFact, error)
	FetchSales(ctx context.Context) ([]SalesFact, error)
}

// Backend is a data-access strategy the cache can be built from.
type Backend interface {
	FactSource
	DimensionResolver

	// Name identifies the backend in logs, metrics and /health.
	Name() string

	// Columns declares which optional columns the backend provides.
	Columns() aggregation.ColumnSet
}

// Preloader is implemented by backends that load whole dimension tables up front
// instead of resolving keys on demand.
type Preloader interface {
	Preload(ctx context.Context) error
}

// Batches splits keys into consecutive slices of at most size keys.
func Batches(keys []int64, size int) [][]int64 {
	if len(keys) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(keys)
	}
	out := make([][]int64, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		out = append(out, keys[start:end])
	}
	return out
}

// Pick returns the entries of all whose key is in keys.
func Pick[T any](all map[int64]T, keys []int64) map[int64]T {
	out := make(map[int64]T, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}
