package projection

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
)

// filterParams are the query parameters that constrain a categorical field.
// rv_class is the legacy name of rv_type and dealer the wire name of dealership.
var filterParams = []string{
	"dealer", "dealership", "dealer_group", "rv_type", "rv_class", "manufacturer",
	"condition", "state", "region", "city", "county", "model", "floorplan",
}

// ParseCriteria reads filters from query parameters. Multi-value filters are
// comma separated; values are trimmed and blanks dropped. A malformed price is
// ErrInvalidQuery. A malformed date is logged and treated as absent.
func ParseCriteria(q url.Values) (aggregation.Criteria, error) {
	values := make(map[aggregation.Field][]string)
	for _, name := range filterParams {
		raw, ok := q[name]
		if !ok {
			continue
		}
		f, err := aggregation.ParseField(name)
		if err != nil {
			return aggregation.Criteria{}, err
		}
		for _, entry := range raw {
			values[f] = append(values[f], strings.Split(entry, ",")...)
		}
	}

	var c aggregation.Criteria
	for f, vs := range values {
		c = c.With(f, vs...)
	}

	var err error
	if c.MinPrice, err = parsePrice(q, "min_price"); err != nil {
		return aggregation.Criteria{}, err
	}
	if c.MaxPrice, err = parsePrice(q, "max_price"); err != nil {
		return aggregation.Criteria{}, err
	}
	c.StartDate = parseDateBound(q, "start_date")
	c.EndDate = parseDateBound(q, "end_date")
	return c, nil
}

func parsePrice(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidQuery, name, raw)
	}
	return &v, nil
}

func parseDateBound(q url.Values, name string) *time.Time {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil
	}
	d, ok := aggregation.ParseDay(raw)
	if !ok {
		slog.Warn("[Facade] Ignoring malformed date bound", "param", name, "value", raw)
		return nil
	}
	return &d
}

// ParseLimit reads limit, returning def when absent. Values outside [lo, hi]
// are ErrInvalidQuery; hi <= 0 means no upper bound.
func ParseLimit(q url.Values, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer, got %q", ErrInvalidQuery, raw)
	}
	if n < lo || (hi > 0 && n > hi) {
		if hi > 0 {
			return 0, fmt.Errorf("%w: limit must be between %d and %d, got %d", ErrInvalidQuery, lo, hi, n)
		}
		return 0, fmt.Errorf("%w: limit must be at least %d, got %d", ErrInvalidQuery, lo, n)
	}
	return n, nil
}
