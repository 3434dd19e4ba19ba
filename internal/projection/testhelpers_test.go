package projection

import (
	"context"
	"testing"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/cache"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"github.com/rvmarket-lab/rv-intel/internal/source/fixture"
	"github.com/stretchr/testify/require"
)

// testDataset holds the four-unit CA/TX inventory used across the facade tests.
const testDataset = `
dim_product_model:
  - {dim_product_model_skey: 1, rv_type: TRAVEL TRAILER, manufacturer: Jayco, model: Jay Flight, model_year: 2024}
  - {dim_product_model_skey: 2, rv_type: CLASS A, manufacturer: Tiffin, model: Open Road, model_year: 2023}
dim_dealership:
  - {dim_dealership_skey: 10, dealership: Lakeside RV, dealer_group: Lakeside, state: CA, city: Fresno, region: West}
  - {dim_dealership_skey: 20, dealership: Lone Star RV, dealer_group: Lone Star, state: TX, city: Austin, region: South}
dim_date:
  - {dim_date_skey: 20240105, calendar_date: "2024-01-05", month_year: Jan 2024}
  - {dim_date_skey: 20240210, calendar_date: "2024-02-10", month_year: Feb 2024}
fact_inventory_current:
  - {stock_number: A1, price: 100, condition: NEW, days_on_lot: 5, dim_product_model_skey: 1, dim_dealership_skey: 10}
  - {stock_number: A2, price: 300, condition: USED, days_on_lot: 9, dim_product_model_skey: 2, dim_dealership_skey: 10}
  - {stock_number: A3, price: 200, condition: NEW, days_on_lot: 12, dim_product_model_skey: 1, dim_dealership_skey: 20}
  - {stock_number: A4, condition: NEW, dim_product_model_skey: 1, dim_dealership_skey: 20}
fact_inventory_sales:
  - {stock_number: S1, price: 30000, condition: NEW, days_to_sell: 10, dim_product_model_skey: 1, dim_dealership_skey: 10, sold_date_skey: 20240105}
  - {stock_number: S2, price: 40000, condition: NEW, days_to_sell: 20, dim_product_model_skey: 1, dim_dealership_skey: 20, sold_date_skey: 20240210}
  - {stock_number: S3, price: 50000, condition: USED, days_to_sell: 30, dim_product_model_skey: 2, dim_dealership_skey: 20, sold_date_skey: 20240210}
`

func newTestService(t *testing.T) (*Service, *cache.Generation, *metrics.Metrics) {
	t.Helper()

	backend, err := fixture.Parse([]byte(testDataset))
	require.NoError(t, err)

	m := metrics.New()
	builder := cache.NewBuilder(backend, cache.BuildOptions{
		Timeout:    10 * time.Second,
		Precompute: []cache.SnapshotSpec{{Field: aggregation.FieldCondition, Value: "NEW"}},
		Limits:     aggregation.DefaultDisplayLimits(),
	}, m)
	gen, err := builder.Build(context.Background())
	require.NoError(t, err)

	c := cache.New(m)
	c.Install(gen)
	return NewService(c, m), gen, m
}
