package joiner

import (
	"log/slog"
	"slices"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/source"
)

// Dimension names a lookup table facts are joined against.
type Dimension string

const (
	DimProductModel Dimension = "product_model"
	DimProduct      Dimension = "product"
	DimDealership   Dimension = "dealership"
	DimDate         Dimension = "date"
)

// Dimensions are the resolved lookup tables for one build.
type Dimensions struct {
	ProductModels map[int64]source.ProductModel
	Products      map[int64]source.Product
	Dealerships   map[int64]source.Dealership
	Dates         map[int64]source.CalendarDate
}

// Keys are the distinct, sorted foreign keys referenced by a set of facts.
type Keys struct {
	ProductModels []int64
	Products      []int64
	Dealerships   []int64
	Dates         []int64
}

// CollectKeys gathers the foreign keys that need resolving. Null keys are skipped.
func CollectKeys(inventory []source.InventoryFact, sales []source.SalesFact) Keys {
	pm := make(map[int64]struct{})
	pr := make(map[int64]struct{})
	dl := make(map[int64]struct{})
	dt := make(map[int64]struct{})
	add := func(set map[int64]struct{}, k *int64) {
		if k != nil {
			set[*k] = struct{}{}
		}
	}
	for _, f := range inventory {
		add(pm, f.ProductModelKey)
		add(pr, f.ProductKey)
		add(dl, f.DealershipKey)
	}
	for _, f := range sales {
		add(pm, f.ProductModelKey)
		add(pr, f.ProductKey)
		add(dl, f.DealershipKey)
		add(dt, f.SoldDateKey)
	}
	return Keys{
		ProductModels: sortedKeys(pm),
		Products:      sortedKeys(pr),
		Dealerships:   sortedKeys(dl),
		Dates:         sortedKeys(dt),
	}
}

func sortedKeys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Miss counts facts whose key had no dimension row.
type Miss struct {
	Keys int   `json:"keys"`
	Rows int64 `json:"rows"`
}

// Stats describes one join. Misses only lists dimensions that missed at least once.
type Stats struct {
	InventoryRows int                `json:"inventory_rows"`
	SalesRows     int                `json:"sales_rows"`
	DimensionRows map[Dimension]int  `json:"dimension_rows"`
	Misses        map[Dimension]Miss `json:"misses"`
}

// MissedRows sums affected rows across dimensions.
func (s Stats) MissedRows() int64 {
	var n int64
	for _, m := range s.Misses {
		n += m.Rows
	}
	return n
}

// Result is the joined output of one build.
type Result struct {
	Inventory aggregation.InventoryTable
	Sales     aggregation.SalesTable
	Stats     Stats
}

type missTracker struct {
	keys map[Dimension]map[int64]struct{}
	rows map[Dimension]int64
}

func newMissTracker() *missTracker {
	return &missTracker{
		keys: make(map[Dimension]map[int64]struct{}),
		rows: make(map[Dimension]int64),
	}
}

func (m *missTracker) record(d Dimension, key int64) {
	set, ok := m.keys[d]
	if !ok {
		set = make(map[int64]struct{})
		m.keys[d] = set
	}
	set[key] = struct{}{}
	m.rows[d]++
}

func (m *missTracker) stats() map[Dimension]Miss {
	out := make(map[Dimension]Miss, len(m.rows))
	for d, rows := range m.rows {
		out[d] = Miss{Keys: len(m.keys[d]), Rows: rows}
	}
	return out
}

// lookup resolves key against dims. A null key is not a miss; there is nothing to join.
func lookup[T any](dims map[int64]T, key *int64, d Dimension, misses *missTracker) (T, bool) {
	var zero T
	if key == nil {
		return zero, false
	}
	v, ok := dims[*key]
	if !ok {
		misses.record(d, *key)
		return zero, false
	}
	return v, true
}

// Join left-joins facts onto dims, in the order product model, product, dealership,
// then date. A fact is never dropped: an unresolved dimension leaves its fields null.
func Join(inventory []source.InventoryFact, sales []source.SalesFact, dims Dimensions, columns aggregation.ColumnSet) Result {
	misses := newMissTracker()

	inv := make([]aggregation.InventoryRecord, 0, len(inventory))
	for _, f := range inventory {
		r := aggregation.InventoryRecord{
			StockNumber: f.StockNumber,
			Price:       f.Price,
			DaysOnLot:   f.DaysOnLot,
		}
		r.Condition = f.Condition
		r.ModelYear = joinAttributes(&r.Attributes, dims, f.ProductModelKey, f.ProductKey, f.DealershipKey, misses)
		r.Title = aggregation.BuildTitle(r.ModelYear, r.Manufacturer, r.Model)
		r.Location = aggregation.BuildLocation(r.City, r.State)
		inv = append(inv, r)
	}

	sold := make([]aggregation.SalesRecord, 0, len(sales))
	for _, f := range sales {
		r := aggregation.SalesRecord{
			StockNumber: f.StockNumber,
			SalePrice:   f.SalePrice,
			DaysToSell:  f.DaysToSell,
		}
		r.Condition = f.Condition
		r.ModelYear = joinAttributes(&r.Attributes, dims, f.ProductModelKey, f.ProductKey, f.DealershipKey, misses)
		if d, ok := lookup(dims.Dates, f.SoldDateKey, DimDate, misses); ok {
			r.CalendarDate = d.Date
			r.MonthYear = d.MonthYear
		}
		sold = append(sold, r)
	}

	res := Result{
		Inventory: aggregation.InventoryTable{Rows: inv, Columns: columns.ForInventory()},
		Sales:     aggregation.SalesTable{Rows: sold, Columns: columns.ForSales()},
		Stats: Stats{
			InventoryRows: len(inv),
			SalesRows:     len(sold),
			DimensionRows: map[Dimension]int{
				DimProductModel: len(dims.ProductModels),
				DimProduct:      len(dims.Products),
				DimDealership:   len(dims.Dealerships),
				DimDate:         len(dims.Dates),
			},
			Misses: misses.stats(),
		},
	}
	logStats(res.Stats)
	return res
}

func joinAttributes(a *aggregation.Attributes, dims Dimensions, productModel, product, dealership *int64, misses *missTracker) *int {
	var modelYear *int
	if pm, ok := lookup(dims.ProductModels, productModel, DimProductModel, misses); ok {
		a.RVType = pm.RVType
		a.Manufacturer = pm.Manufacturer
		a.Model = pm.Model
		modelYear = pm.ModelYear
	}
	if p, ok := lookup(dims.Products, product, DimProduct, misses); ok {
		a.Floorplan = p.Floorplan
	}
	if d, ok := lookup(dims.Dealerships, dealership, DimDealership, misses); ok {
		a.Dealership = d.Dealership
		a.DealerGroup = d.DealerGroup
		a.State = d.State
		a.Region = d.Region
		a.City = d.City
		a.County = d.County
	}
	return modelYear
}

func logStats(s Stats) {
	slog.Info("[Joiner] Joined facts",
		"inventory_rows", s.InventoryRows,
		"sales_rows", s.SalesRows)

	dims := make([]Dimension, 0, len(s.Misses))
	for d := range s.Misses {
		dims = append(dims, d)
	}
	slices.Sort(dims)
	for _, d := range dims {
		m := s.Misses[d]
		slog.Warn("[Joiner] Dimension keys not found, rows kept with null attributes",
			"dimension", d,
			"missing_keys", m.Keys,
			"affected_rows", m.Rows)
	}
}
