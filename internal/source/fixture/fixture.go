// Package fixture serves a star-schema dataset from a single YAML file. It backs
// local development and the end-to-end tests.
package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/source"
	"gopkg.in/yaml.v3"
)

// Name is the backend name reported in logs and metrics.
const Name = "fixture"

type dateRow struct {
	Key          int64   `yaml:"dim_date_skey"`
	CalendarDate string  `yaml:"calendar_date"`
	MonthYear    *string `yaml:"month_year"`
}

// Dataset is the on-disk document.
type Dataset struct {
	// Columns lists the optional columns present. Empty means all.
	Columns       []string               `yaml:"columns"`
	ProductModels []source.ProductModel  `yaml:"dim_product_model"`
	Products      []source.Product       `yaml:"dim_product"`
	Dealerships   []source.Dealership    `yaml:"dim_dealership"`
	Dates         []dateRow              `yaml:"dim_date"`
	Inventory     []source.InventoryFact `yaml:"fact_inventory_current"`
	Sales         []source.SalesFact     `yaml:"fact_inventory_sales"`
}

// Backend implements source.Backend over a parsed Dataset.
type Backend struct {
	columns       aggregation.ColumnSet
	productModels map[int64]source.ProductModel
	products      map[int64]source.Product
	dealerships   map[int64]source.Dealership
	dates         map[int64]source.CalendarDate
	inventory     []source.InventoryFact
	sales         []source.SalesFact
}

// Load reads and parses the dataset at path.
func Load(path string) (*Backend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %w", path, err)
	}
	slog.Info("[Fixture] Dataset loaded",
		"path", path,
		"inventory_rows", len(b.inventory),
		"sales_rows", len(b.sales))
	return b, nil
}

// Parse builds a backend from a YAML document.
func Parse(data []byte) (*Backend, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	columns := aggregation.AllColumns
	if len(ds.Columns) > 0 {
		var err error
		if columns, err = aggregation.ParseColumnSet(ds.Columns); err != nil {
			return nil, fmt.Errorf("invalid columns: %w", err)
		}
	}

	b := &Backend{
		columns:       columns,
		productModels: make(map[int64]source.ProductModel, len(ds.ProductModels)),
		products:      make(map[int64]source.Product, len(ds.Products)),
		dealerships:   make(map[int64]source.Dealership, len(ds.Dealerships)),
		dates:         make(map[int64]source.CalendarDate, len(ds.Dates)),
		inventory:     ds.Inventory,
		sales:         ds.Sales,
	}
	for _, pm := range ds.ProductModels {
		b.productModels[pm.Key] = pm
	}
	for _, p := range ds.Products {
		b.products[p.Key] = p
	}
	for _, d := range ds.Dealerships {
		b.dealerships[d.Key] = d
	}
	for _, d := range ds.Dates {
		row := source.CalendarDate{Key: d.Key, MonthYear: d.MonthYear}
		if t, ok := aggregation.ParseDay(d.CalendarDate); ok {
			row.Date = &t
		} else if d.CalendarDate != "" {
			slog.Warn("[Fixture] Ignoring malformed calendar_date", "dim_date_skey", d.Key, "value", d.CalendarDate)
		}
		b.dates[d.Key] = row
	}
	return b, nil
}

func (b *Backend) Name() string                   { return Name }
func (b *Backend) Columns() aggregation.ColumnSet { return b.columns }

func (b *Backend) FetchInventory(ctx context.Context) ([]source.InventoryFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.inventory, nil
}

func (b *Backend) FetchSales(ctx context.Context) ([]source.SalesFact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.sales, nil
}

func (b *Backend) ResolveProductModels(_ context.Context, keys []int64) (map[int64]source.ProductModel, error) {
	return source.Pick(b.productModels, keys), nil
}

func (b *Backend) ResolveProducts(_ context.Context, keys []int64) (map[int64]source.Product, error) {
	return source.Pick(b.products, keys), nil
}

func (b *Backend) ResolveDealerships(_ context.Context, keys []int64) (map[int64]source.Dealership, error) {
	return source.Pick(b.dealerships, keys), nil
}

func (b *Backend) ResolveDates(_ context.Context, keys []int64) (map[int64]source.CalendarDate, error) {
	return source.Pick(b.dates, keys), nil
}

var _ source.Backend = (*Backend)(nil)

