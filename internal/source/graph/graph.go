package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/source"
	"golang.org/x/sync/errgroup"
)

const (
	collectionInventory     = "fact_inventory_currents"
	collectionSales         = "fact_inventory_sales"
	collectionProductModels = "dim_product_models"
	collectionProducts      = "dim_products"
	collectionDealerships   = "dim_dealerships"
	collectionDates         = "dim_dates"
)

var (
	inventoryFields    = "stock_number price condition days_on_lot dim_product_model_skey dim_product_skey dim_dealership_skey"
	salesFields        = "stock_number price condition days_to_sell dim_product_model_skey dim_product_skey dim_dealership_skey sold_date_skey"
	productModelFields = "dim_product_model_skey rv_type manufacturer model model_year"
	productFields      = "dim_product_skey floorplan"
	dealershipFields   = "dim_dealership_skey dealership dealer_group state region city county"
	dateFields         = "dim_date_skey calendar_date month_year"
)

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection[T any] struct {
	Items    []T      `json:"items"`
	PageInfo pageInfo `json:"pageInfo"`
}

// dateItem carries calendar_date as text; the endpoint renders dates either as
// YYYY-MM-DD or as a full timestamp.
type dateItem struct {
	Key          int64   `json:"dim_date_skey"`
	CalendarDate *string `json:"calendar_date"`
	MonthYear    *string `json:"month_year"`
}

func pageQuery(collection, fields string) string {
	return fmt.Sprintf(`query($first: Int!, $after: String) {
  %s(first: $first, after: $after) {
    items { %s }
    pageInfo { hasNextPage endCursor }
  }
}`, collection, fields)
}

func lookupQuery(collection, keyField, fields string) string {
	return fmt.Sprintf(`query($first: Int!, $keys: [Int!]!) {
  %s(first: $first, filter: { %s: { in: $keys } }) {
    items { %s }
  }
}`, collection, keyField, fields)
}

func (c *Client) Name() string { return Name }

// Columns reports every optional column; the GraphQL schema exposes all of them.
func (c *Client) Columns() aggregation.ColumnSet { return aggregation.AllColumns }

func (c *Client) FetchInventory(ctx context.Context) ([]source.InventoryFact, error) {
	return fetchAll[source.InventoryFact](ctx, c, collectionInventory, inventoryFields)
}

func (c *Client) FetchSales(ctx context.Context) ([]source.SalesFact, error) {
	return fetchAll[source.SalesFact](ctx, c, collectionSales, salesFields)
}

func (c *Client) ResolveProductModels(ctx context.Context, keys []int64) (map[int64]source.ProductModel, error) {
	return lookupAll(ctx, c, collectionProductModels, "dim_product_model_skey", productModelFields, keys,
		func(pm source.ProductModel) (int64, source.ProductModel) { return pm.Key, pm })
}

func (c *Client) ResolveProducts(ctx context.Context, keys []int64) (map[int64]source.Product, error) {
	return lookupAll(ctx, c, collectionProducts, "dim_product_skey", productFields, keys,
		func(p source.Product) (int64, source.Product) { return p.Key, p })
}

func (c *Client) ResolveDealerships(ctx context.Context, keys []int64) (map[int64]source.Dealership, error) {
	return lookupAll(ctx, c, collectionDealerships, "dim_dealership_skey", dealershipFields, keys,
		func(d source.Dealership) (int64, source.Dealership) { return d.Key, d })
}

func (c *Client) ResolveDates(ctx context.Context, keys []int64) (map[int64]source.CalendarDate, error) {
	return lookupAll(ctx, c, collectionDates, "dim_date_skey", dateFields, keys,
		func(d dateItem) (int64, source.CalendarDate) {
			return d.Key, source.CalendarDate{Key: d.Key, Date: parseDate(d.Key, d.CalendarDate), MonthYear: d.MonthYear}
		})
}

var _ source.Backend = (*Client)(nil)

// parseDate accepts YYYY-MM-DD with or without a trailing time part.
func parseDate(key int64, raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if len(s) > len(aggregation.DayLayout) {
		s = s[:len(aggregation.DayLayout)]
	}
	d, ok := aggregation.ParseDay(s)
	if !ok {
		slog.Warn("[Graph] Ignoring malformed calendar date", "dim_date_skey", key, "value", *raw)
		return nil
	}
	return &d
}

// fetchAll follows the cursor until the endpoint reports no next page.
func fetchAll[T any](ctx context.Context, c *Client, collection, fields string) ([]T, error) {
	query := pageQuery(collection, fields)
	vars := map[string]interface{}{"first": c.pageSize, "after": nil}

	var (
		out   []T
		pages int
	)
	for {
		var data map[string]connection[T]
		err := c.Execute(ctx, query, vars, &data)
		c.observe("fetch_"+collection, err)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", collection, pages+1, err)
		}
		conn := data[collection]
		out = append(out, conn.Items...)
		pages++

		if !conn.PageInfo.HasNextPage {
			break
		}
		if conn.PageInfo.EndCursor == "" || conn.PageInfo.EndCursor == vars["after"] {
			return nil, fmt.Errorf("%s page %d reports a next page without advancing the cursor", collection, pages)
		}
		vars["after"] = conn.PageInfo.EndCursor
	}

	slog.Info("[Graph] Fact collection fetched", "collection", collection, "rows", len(out), "pages", pages)
	return out, nil
}

// lookupAll resolves keys with `in` filters of at most batchSize keys, running
// up to concurrency batches at once.
func lookupAll[I any, T any](ctx context.Context, c *Client, collection, keyField, fields string, keys []int64, convert func(I) (int64, T)) (map[int64]T, error) {
	query := lookupQuery(collection, keyField, fields)
	out := make(map[int64]T, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, batch := range source.Batches(keys, c.batchSize) {
		g.Go(func() error {
			var data map[string]connection[I]
			vars := map[string]interface{}{"first": len(batch), "keys": batch}
			err := c.Execute(gctx, query, vars, &data)
			c.observe("resolve_"+collection, err)
			if err != nil {
				return fmt.Errorf("failed to resolve %d %s keys: %w", len(batch), collection, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, item := range data[collection].Items {
				k, v := convert(item)
				out[k] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
