package projection

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	v1 "github.com/rvmarket-lab/rv-intel/internal/api/v1"
	"github.com/rvmarket-lab/rv-intel/internal/cache"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/joiner"
	"github.com/rvmarket-lab/rv-intel/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	defaultItemLimit = 100
	maxItemLimit     = 10000

	// slowComputeThreshold flags tier-3 computations worth a log line.
	slowComputeThreshold = 500 * time.Millisecond
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownField is returned for a group-by field the endpoint does not offer.
	ErrUnknownField = errors.New("unknown field")

	// aggFields are the fields GET /inventory/agg/:field accepts.
	aggFields = map[aggregation.Field]bool{
		aggregation.FieldRVType:       true,
		aggregation.FieldDealerGroup:  true,
		aggregation.FieldManufacturer: true,
		aggregation.FieldState:        true,
	}
)

// Service is the query facade over the cache. It holds no data of its own: every
// call reads the generation current at that moment.
type Service struct {
	cache   *cache.Cache
	metrics *metrics.Metrics
	flight  singleflight.Group
}

// NewService creates a facade over c. m may be nil.
func NewService(c *cache.Cache, m *metrics.Metrics) *Service {
	return &Service{cache: c, metrics: m}
}

// Summary answers an aggregated-summary query from the cheapest tier that can
// serve it: the unfiltered snapshot, a single-filter snapshot, or an on-demand
// computation. It returns the tier used.
func (s *Service) Summary(ctx context.Context, c aggregation.Criteria) (aggregation.Summary, string, error) {
	g, err := s.cache.Current()
	if err != nil {
		return aggregation.Summary{}, "", err
	}
	if c.IsEmpty() {
		s.observe("aggregated", metrics.TierUnfiltered)
		return g.Unfiltered, metrics.TierUnfiltered, nil
	}
	if key, ok := c.SingleCategorical(); ok {
		if snap, ok := g.Snapshot(key); ok {
			s.observe("aggregated", metrics.TierSnapshot)
			return snap, metrics.TierSnapshot, nil
		}
	}

	v, err := s.compute(ctx, "aggregated", g, c, func() interface{} { return g.Summarize(c) })
	if err != nil {
		return aggregation.Summary{}, "", err
	}
	return v.(aggregation.Summary), metrics.TierComputed, nil
}

// Velocity answers a sales-velocity query with the same three tiers as Summary.
func (s *Service) Velocity(ctx context.Context, c aggregation.Criteria) (aggregation.Velocity, string, error) {
	g, err := s.cache.Current()
	if err != nil {
		return aggregation.Velocity{}, "", err
	}
	if c.IsEmpty() {
		s.observe("sales_velocity", metrics.TierUnfiltered)
		return g.UnfilteredVelocity, metrics.TierUnfiltered, nil
	}
	if key, ok := c.SingleCategorical(); ok {
		if snap, ok := g.VelocitySnapshot(key); ok {
			s.observe("sales_velocity", metrics.TierSnapshot)
			return snap, metrics.TierSnapshot, nil
		}
	}

	v, err := s.compute(ctx, "sales_velocity", g, c, func() interface{} { return g.Velocity(c) })
	if err != nil {
		return aggregation.Velocity{}, "", err
	}
	return v.(aggregation.Velocity), metrics.TierComputed, nil
}

// compute runs fn once per (endpoint, generation, criteria) no matter how many
// identical requests are in flight. Waiting callers give up when ctx ends; the
// computation itself finishes for whoever is still waiting.
func (s *Service) compute(ctx context.Context, endpoint string, g *cache.Generation, c aggregation.Criteria, fn func() interface{}) (interface{}, error) {
	s.observe(endpoint, metrics.TierComputed)
	key := endpoint + "|" + g.ID.String() + "|" + c.Key()

	ch := s.flight.DoChan(key, func() (interface{}, error) {
		start := time.Now()
		v := fn()
		if elapsed := time.Since(start); elapsed > slowComputeThreshold {
			slog.Info("[Facade] Slow on-demand computation",
				"endpoint", endpoint,
				"criteria", c.Key(),
				"duration", elapsed)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) observe(endpoint, tier string) {
	if s.metrics == nil {
		return
	}
	s.metrics.FacadeRequests.WithLabelValues(endpoint, tier).Inc()
}

// Inventory lists matching units, highest price first, truncated to limit.
func (s *Service) Inventory(c aggregation.Criteria, limit int) (v1.InventoryResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.InventoryResponse{}, err
	}

	matched := sortedByPrice(aggregation.Filter(g.Inventory, c).Rows)
	page := matched[:min(limit, len(matched))]

	items := make([]v1.InventoryItem, 0, len(page))
	dealers := make(map[string]struct{})
	for _, r := range page {
		items = append(items, v1.NewInventoryItem(r))
		if r.Dealership != nil && *r.Dealership != "" {
			dealers[*r.Dealership] = struct{}{}
		}
	}

	return v1.InventoryResponse{
		Items:          items,
		Total:          len(items),
		TotalMatched:   len(matched),
		DealersQueried: len(dealers),
	}, nil
}

// Export returns every matching unit in listing order.
func (s *Service) Export(c aggregation.Criteria) ([]aggregation.InventoryRecord, error) {
	g, err := s.cache.Current()
	if err != nil {
		return nil, err
	}
	return sortedByPrice(aggregation.Filter(g.Inventory, c).Rows), nil
}

// sortedByPrice orders a copy of rows by price descending, null prices last,
// then by stock number.
func sortedByPrice(rows []aggregation.InventoryRecord) []aggregation.InventoryRecord {
	out := make([]aggregation.InventoryRecord, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Price, out[j].Price
		switch {
		case pi == nil && pj == nil:
			return out[i].StockNumber < out[j].StockNumber
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi > *pj
		}
		return out[i].StockNumber < out[j].StockNumber
	})
	return out
}

// Overview is the compact summary, optionally narrowed to one dealership.
func (s *Service) Overview(dealer string) (v1.SummaryResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.SummaryResponse{}, err
	}
	inv := g.Inventory
	if dealer = strings.TrimSpace(dealer); dealer != "" {
		inv = aggregation.Filter(inv, aggregation.Criteria{}.With(aggregation.FieldDealership, dealer))
	}
	return v1.SummaryResponse{Summary: aggregation.BuildOverview(inv)}, nil
}

// Totals reports overall unit and value totals with a per-condition breakdown.
func (s *Service) Totals() (v1.TotalsResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.TotalsResponse{}, err
	}
	return v1.TotalsResponse{
		TotalUnits:  g.Unfiltered.TotalUnits,
		TotalValue:  g.Unfiltered.TotalValue,
		ByCondition: aggregation.AggregateWith(g.Inventory, aggregation.FieldCondition, 0, g.AggOptions),
	}, nil
}

// FieldAggregate groups the whole inventory by one field. limit <= 0 returns
// every bucket.
func (s *Service) FieldAggregate(name string, limit int) (v1.FieldAggregateResponse, error) {
	f, err := aggregation.ParseField(name)
	if err != nil || !aggFields[f] {
		return v1.FieldAggregateResponse{}, ErrUnknownField
	}
	g, err := s.cache.Current()
	if err != nil {
		return v1.FieldAggregateResponse{}, err
	}
	return v1.FieldAggregateResponse{
		Field:       f.String(),
		TotalSample: g.Inventory.Len(),
		Buckets:     aggregation.AggregateWith(g.Inventory, f, limit, g.AggOptions),
	}, nil
}

// Counts reports the row count of every table behind the serving generation.
func (s *Service) Counts() (v1.CountsResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.CountsResponse{}, err
	}
	dims := g.JoinStats.DimensionRows
	return v1.CountsResponse{
		FactInventory:    g.Inventory.Len(),
		FactSales:        g.Sales.Len(),
		DimProductModels: dims[joiner.DimProductModel],
		DimProducts:      dims[joiner.DimProduct],
		DimDealerships:   dims[joiner.DimDealership],
		DimDates:         dims[joiner.DimDate],
	}, nil
}

// Filters returns the filter values collected when the generation was built.
func (s *Service) Filters() (aggregation.FilterOptions, error) {
	g, err := s.cache.Current()
	if err != nil {
		return aggregation.FilterOptions{}, err
	}
	return g.FilterOptions, nil
}

// Dealers returns the sorted distinct dealership names.
func (s *Service) Dealers() (v1.DealersResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.DealersResponse{}, err
	}
	return v1.DealersResponse{Dealers: g.Dealers, Count: len(g.Dealers)}, nil
}

// SalesDateRange returns the span of sale dates.
func (s *Service) SalesDateRange() (v1.SalesDateRangeResponse, error) {
	g, err := s.cache.Current()
	if err != nil {
		return v1.SalesDateRangeResponse{}, err
	}
	return v1.NewSalesDateRangeResponse(g.DateRange), nil
}
