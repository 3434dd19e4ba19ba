// Package lake reads the star schema straight from a directory of Delta-style
// tables: a _delta_log of JSON commits naming parquet data files.
package lake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/source"
)

// Name is the backend name reported in logs and metrics.
const Name = "lake"

const readBatchSize = 4096

// ErrNotPreloaded is returned by resolvers called before Preload.
var ErrNotPreloaded = errors.New("lake dimensions not preloaded")

// columnSources maps each optional column to the table and column that carries it.
var columnSources = []struct {
	table  string
	column string
	set    func(aggregation.ColumnSet) aggregation.ColumnSet
}{
	{tableDealerships, "dealership", field(aggregation.FieldDealership)},
	{tableDealerships, "dealer_group", field(aggregation.FieldDealerGroup)},
	{tableDealerships, "state", field(aggregation.FieldState)},
	{tableDealerships, "region", field(aggregation.FieldRegion)},
	{tableDealerships, "city", field(aggregation.FieldCity)},
	{tableDealerships, "county", field(aggregation.FieldCounty)},
	{tableProductModels, "rv_type", field(aggregation.FieldRVType)},
	{tableProductModels, "manufacturer", field(aggregation.FieldManufacturer)},
	{tableProductModels, "model", field(aggregation.FieldModel)},
	{tableProducts, "floorplan", field(aggregation.FieldFloorplan)},
	{tableInventory, "condition", field(aggregation.FieldCondition)},
	{tableInventory, "price", column(aggregation.ColPrice)},
	{tableInventory, "days_on_lot", column(aggregation.ColDaysOnLot)},
	{tableSales, "days_to_sell", column(aggregation.ColDaysToSell)},
	{tableDates, "calendar_date", column(aggregation.ColDate)},
}

func field(f aggregation.Field) func(aggregation.ColumnSet) aggregation.ColumnSet {
	return func(cs aggregation.ColumnSet) aggregation.ColumnSet { return cs.With(f) }
}

func column(c aggregation.Column) func(aggregation.ColumnSet) aggregation.ColumnSet {
	return func(cs aggregation.ColumnSet) aggregation.ColumnSet { return cs.WithColumn(c) }
}

// Client implements source.Backend and source.Preloader over a lake root.
type Client struct {
	root string

	mu            sync.RWMutex
	schemas       map[string]map[string]struct{}
	preloaded     bool
	productModels map[int64]source.ProductModel
	products      map[int64]source.Product
	dealerships   map[int64]source.Dealership
	dates         map[int64]source.CalendarDate
}

// New creates a client for the tables under root.
func New(root string) *Client {
	return &Client{
		root:    root,
		schemas: make(map[string]map[string]struct{}),
	}
}

func (c *Client) Name() string { return Name }

// Columns reports the optional columns found in the table schemas read so far.
// Before any table has been read every column is assumed present.
func (c *Client) Columns() aggregation.ColumnSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.preloaded {
		return aggregation.AllColumns
	}
	var cs aggregation.ColumnSet
	for _, src := range columnSources {
		if _, ok := c.schemas[src.table][src.column]; ok {
			cs = src.set(cs)
		}
	}
	return cs
}

// Preload reads the four dimension tables in full. dim_product and dim_date are
// optional; their absence drops the floorplan and date columns.
func (c *Client) Preload(ctx context.Context) error {
	start := time.Now()

	models, err := readTable[productModelRow](ctx, c, tableProductModels, false)
	if err != nil {
		return err
	}
	products, err := readTable[productRow](ctx, c, tableProducts, true)
	if err != nil {
		return err
	}
	dealers, err := readTable[dealershipRow](ctx, c, tableDealerships, false)
	if err != nil {
		return err
	}
	dates, err := readTable[dateRow](ctx, c, tableDates, true)
	if err != nil {
		return err
	}

	pm := make(map[int64]source.ProductModel, len(models))
	for _, r := range models {
		pm[r.Key] = source.ProductModel{
			Key:          r.Key,
			RVType:       r.RVType,
			Manufacturer: r.Manufacturer,
			Model:        r.Model,
			ModelYear:    toInt(r.ModelYear),
		}
	}
	pr := make(map[int64]source.Product, len(products))
	for _, r := range products {
		pr[r.Key] = source.Product{Key: r.Key, Floorplan: r.Floorplan}
	}
	dl := make(map[int64]source.Dealership, len(dealers))
	for _, r := range dealers {
		dl[r.Key] = source.Dealership{
			Key:         r.Key,
			Dealership:  r.Dealership,
			DealerGroup: r.DealerGroup,
			State:       r.State,
			Region:      r.Region,
			City:        r.City,
			County:      r.County,
		}
	}
	dt := make(map[int64]source.CalendarDate, len(dates))
	for _, r := range dates {
		dt[r.Key] = r.calendarDate()
	}

	c.mu.Lock()
	c.productModels, c.products, c.dealerships, c.dates = pm, pr, dl, dt
	c.preloaded = true
	c.mu.Unlock()

	slog.Info("[Lake] Dimensions preloaded",
		"product_models", len(pm),
		"products", len(pr),
		"dealerships", len(dl),
		"dates", len(dt),
		"elapsed", time.Since(start))
	return nil
}

func (c *Client) FetchInventory(ctx context.Context) ([]source.InventoryFact, error) {
	rows, err := readTable[inventoryRow](ctx, c, tableInventory, false)
	if err != nil {
		return nil, err
	}
	out := make([]source.InventoryFact, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.fact())
	}
	return out, nil
}

// FetchSales returns no rows, not an error, when the lake has no sales table.
func (c *Client) FetchSales(ctx context.Context) ([]source.SalesFact, error) {
	rows, err := readTable[salesRow](ctx, c, tableSales, true)
	if err != nil {
		return nil, err
	}
	out := make([]source.SalesFact, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.fact())
	}
	return out, nil
}

func (c *Client) ResolveProductModels(_ context.Context, keys []int64) (map[int64]source.ProductModel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.preloaded {
		return nil, ErrNotPreloaded
	}
	return source.Pick(c.productModels, keys), nil
}

func (c *Client) ResolveProducts(_ context.Context, keys []int64) (map[int64]source.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.preloaded {
		return nil, ErrNotPreloaded
	}
	return source.Pick(c.products, keys), nil
}

func (c *Client) ResolveDealerships(_ context.Context, keys []int64) (map[int64]source.Dealership, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.preloaded {
		return nil, ErrNotPreloaded
	}
	return source.Pick(c.dealerships, keys), nil
}

func (c *Client) ResolveDates(_ context.Context, keys []int64) (map[int64]source.CalendarDate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.preloaded {
		return nil, ErrNotPreloaded
	}
	return source.Pick(c.dates, keys), nil
}

var (
	_ source.Backend   = (*Client)(nil)
	_ source.Preloader = (*Client)(nil)
)

// readTable decodes every active file of table into T and records the union of
// their column names. A missing optional table yields no rows.
func readTable[T any](ctx context.Context, c *Client, table string, optional bool) ([]T, error) {
	dir := filepath.Join(c.root, table)
	files, err := activeFiles(dir)
	if errors.Is(err, errNoTable) && optional {
		slog.Warn("[Lake] Optional table missing, continuing without it", "table", table)
		c.recordSchema(table, map[string]struct{}{})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lake table %s: %w", table, err)
	}

	columns := make(map[string]struct{})
	var rows []T
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		read, err := readFile[T](path, columns)
		if err != nil {
			return nil, fmt.Errorf("lake table %s: %w", table, err)
		}
		rows = append(rows, read...)
	}
	c.recordSchema(table, columns)

	slog.Info("[Lake] Table read", "table", table, "files", len(files), "rows", len(rows))
	return rows, nil
}

func (c *Client) recordSchema(table string, columns map[string]struct{}) {
	c.mu.Lock()
	c.schemas[table] = columns
	c.mu.Unlock()
}

func readFile[T any](path string, columns map[string]struct{}) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet %s: %w", filepath.Base(path), err)
	}
	for _, fld := range pf.Schema().Fields() {
		columns[fld.Name()] = struct{}{}
	}

	reader := parquet.NewGenericReader[T](f)
	defer reader.Close()

	rows := make([]T, 0, reader.NumRows())
	buf := make([]T, readBatchSize)
	for {
		// Zeroed slots make the reader allocate fresh values for pointer fields.
		clear(buf)
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}
