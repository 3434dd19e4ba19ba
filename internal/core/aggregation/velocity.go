package aggregation

import (
	"slices"
	"sort"
	"time"
)

// VelocityBucket is the sales-velocity breakdown for one value of a field.
type VelocityBucket struct {
	Name             string  `json:"name"`
	SoldCount        int64   `json:"sold_count"`
	AvgDaysToSell    float64 `json:"avg_days_to_sell"`
	MedianDaysToSell float64 `json:"median_days_to_sell"`
	MinDaysToSell    int64   `json:"min_days_to_sell"`
	MaxDaysToSell    int64   `json:"max_days_to_sell"`
	AvgSalePrice     float64 `json:"avg_sale_price"`
	TotalSalesValue  float64 `json:"total_sales_value"`
}

// MonthBucket is one calendar month of the sales trend.
type MonthBucket struct {
	Month           string  `json:"month"`
	Label           string  `json:"label"`
	SoldCount       int64   `json:"sold_count"`
	AvgDaysToSell   float64 `json:"avg_days_to_sell"`
	AvgSalePrice    float64 `json:"avg_sale_price"`
	TotalSalesValue float64 `json:"total_sales_value"`
}

// Velocity summarizes how fast units sell. Empty input yields zeros and empty lists.
type Velocity struct {
	TotalSold        int64            `json:"total_sold"`
	AvgDaysToSell    float64          `json:"avg_days_to_sell"`
	MedianDaysToSell float64          `json:"median_days_to_sell"`
	MinDaysToSell    int64            `json:"min_days_to_sell"`
	MaxDaysToSell    int64            `json:"max_days_to_sell"`
	AvgSalePrice     float64          `json:"avg_sale_price"`
	TotalSalesValue  float64          `json:"total_sales_value"`
	ByRVType         []VelocityBucket `json:"by_rv_type"`
	ByCondition      []VelocityBucket `json:"by_condition"`
	ByDealerGroup    []VelocityBucket `json:"by_dealer_group"`
	ByManufacturer   []VelocityBucket `json:"by_manufacturer"`
	ByState          []VelocityBucket `json:"by_state"`
	ByRegion         []VelocityBucket `json:"by_region"`
	ByMonth          []MonthBucket    `json:"by_month"`
}

// EmptyVelocity returns the zero-valued response with non-nil lists.
func EmptyVelocity() Velocity {
	return Velocity{
		ByRVType:       []VelocityBucket{},
		ByCondition:    []VelocityBucket{},
		ByDealerGroup:  []VelocityBucket{},
		ByManufacturer: []VelocityBucket{},
		ByState:        []VelocityBucket{},
		ByRegion:       []VelocityBucket{},
		ByMonth:        []MonthBucket{},
	}
}

type velocityAcc struct {
	count  int64
	days   []int64
	prices priceStats
}

func (a *velocityAcc) add(r SalesRecord, withDays bool) {
	a.count++
	if withDays && r.DaysToSell != nil {
		a.days = append(a.days, int64(*r.DaysToSell))
	}
	if amount, ok := AmountDecimal(r.SalePrice); ok {
		a.prices.add(amount)
	}
}

type dayStats struct {
	mean, median float64
	min, max     int64
}

// stats sorts a copy of the collected days; the accumulator stays reusable.
func (a *velocityAcc) stats() dayStats {
	if len(a.days) == 0 {
		return dayStats{}
	}
	days := slices.Clone(a.days)
	slices.Sort(days)
	var sum int64
	for _, d := range days {
		sum += d
	}
	n := len(days)
	median := float64(days[n/2])
	if n%2 == 0 {
		median = float64(days[n/2-1]+days[n/2]) / 2
	}
	return dayStats{
		mean:   float64(sum) / float64(n),
		median: median,
		min:    days[0],
		max:    days[n-1],
	}
}

func (a *velocityAcc) bucket(name string) VelocityBucket {
	s := a.stats()
	b := VelocityBucket{
		Name:             name,
		SoldCount:        a.count,
		AvgDaysToSell:    s.mean,
		MedianDaysToSell: s.median,
		MinDaysToSell:    s.min,
		MaxDaysToSell:    s.max,
	}
	if a.prices.n > 0 {
		b.AvgSalePrice = toFloat(a.prices.avg())
		b.TotalSalesValue = toFloat(a.prices.sum)
	}
	return b
}

// SalesVelocity computes days-to-sell statistics overall, per dimension and per
// month. Dimension breakdowns sort by sold count descending then name; the monthly
// trend sorts chronologically.
func SalesVelocity(t SalesTable, limits DisplayLimits) Velocity {
	if len(t.Rows) == 0 {
		return EmptyVelocity()
	}
	withDays := t.Columns.HasColumn(ColDaysToSell)

	var total velocityAcc
	for _, r := range t.Rows {
		total.add(r, withDays)
	}
	s := total.stats()
	out := Velocity{
		TotalSold:        total.count,
		AvgDaysToSell:    s.mean,
		MedianDaysToSell: s.median,
		MinDaysToSell:    s.min,
		MaxDaysToSell:    s.max,
		ByRVType:         VelocityBy(t, FieldRVType, limits.For(FieldRVType)),
		ByCondition:      VelocityBy(t, FieldCondition, limits.For(FieldCondition)),
		ByDealerGroup:    VelocityBy(t, FieldDealerGroup, limits.For(FieldDealerGroup)),
		ByManufacturer:   VelocityBy(t, FieldManufacturer, limits.For(FieldManufacturer)),
		ByState:          VelocityBy(t, FieldState, limits.For(FieldState)),
		ByRegion:         VelocityBy(t, FieldRegion, limits.For(FieldRegion)),
		ByMonth:          velocityByMonth(t, withDays),
	}
	if total.prices.n > 0 {
		out.AvgSalePrice = toFloat(total.prices.avg())
		out.TotalSalesValue = toFloat(total.prices.sum)
	}
	return out
}

// VelocityBy groups sales by f. A field whose column t lacks yields an empty slice.
func VelocityBy(t SalesTable, f Field, limit int) []VelocityBucket {
	if !t.Columns.Has(f) || len(t.Rows) == 0 {
		return []VelocityBucket{}
	}
	withDays := t.Columns.HasColumn(ColDaysToSell)
	groups := make(map[string]*velocityAcc)
	for _, r := range t.Rows {
		name := groupKey(r.Attr(f))
		acc, ok := groups[name]
		if !ok {
			acc = &velocityAcc{}
			groups[name] = acc
		}
		acc.add(r, withDays)
	}

	out := make([]VelocityBucket, 0, len(groups))
	for name, acc := range groups {
		out = append(out, acc.bucket(name))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoldCount != out[j].SoldCount {
			return out[i].SoldCount > out[j].SoldCount
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// velocityByMonth buckets sales by calendar month. Sales without a date count in
// the totals but cannot be placed on the timeline.
func velocityByMonth(t SalesTable, withDays bool) []MonthBucket {
	if !t.Columns.HasColumn(ColDate) {
		return []MonthBucket{}
	}
	type monthAcc struct {
		velocityAcc
		label string
	}
	months := make(map[time.Time]*monthAcc)
	for _, r := range t.Rows {
		if r.CalendarDate == nil {
			continue
		}
		key := MonthKey(*r.CalendarDate)
		acc, ok := months[key]
		if !ok {
			acc = &monthAcc{label: key.Format("Jan 2006")}
			if r.MonthYear != nil && *r.MonthYear != "" {
				acc.label = *r.MonthYear
			}
			months[key] = acc
		}
		acc.add(r, withDays)
	}

	keys := make([]time.Time, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		acc := months[k]
		b := acc.bucket(k.Format(MonthLayout))
		out = append(out, MonthBucket{
			Month:           b.Name,
			Label:           acc.label,
			SoldCount:       b.SoldCount,
			AvgDaysToSell:   b.AvgDaysToSell,
			AvgSalePrice:    b.AvgSalePrice,
			TotalSalesValue: b.TotalSalesValue,
		})
	}
	return out
}
