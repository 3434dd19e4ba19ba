package aggregation

// DisplayLimits caps how many buckets each breakdown returns. Zero means no cap.
// Caps never change totals: they only shorten the bucket lists.
type DisplayLimits struct {
	RVType       int
	DealerGroup  int
	Manufacturer int
	Condition    int
	State        int
	Region       int
	City         int
	County       int
}

// DefaultDisplayLimits returns the caps dashboards are built around. State covers
// US states plus territories.
func DefaultDisplayLimits() DisplayLimits {
	return DisplayLimits{
		RVType:       10,
		DealerGroup:  10,
		Manufacturer: 10,
		Condition:    0,
		State:        65,
		Region:       10,
		City:         20,
		County:       15,
	}
}

// For returns the cap configured for f.
func (l DisplayLimits) For(f Field) int {
	switch f {
	case FieldRVType:
		return l.RVType
	case FieldDealerGroup:
		return l.DealerGroup
	case FieldManufacturer:
		return l.Manufacturer
	case FieldCondition:
		return l.Condition
	case FieldState:
		return l.State
	case FieldRegion:
		return l.Region
	case FieldCity:
		return l.City
	case FieldCounty:
		return l.County
	}
	return 0
}

// Summary is the multi-dimensional inventory summary. Every numeric field is
// zero and every breakdown is an empty list when nothing matched.
type Summary struct {
	TotalUnits     int64    `json:"total_units"`
	TotalValue     float64  `json:"total_value"`
	AvgPrice       float64  `json:"avg_price"`
	MinPrice       float64  `json:"min_price"`
	MaxPrice       float64  `json:"max_price"`
	ByRVType       []Bucket `json:"by_rv_type"`
	ByDealerGroup  []Bucket `json:"by_dealer_group"`
	ByManufacturer []Bucket `json:"by_manufacturer"`
	ByCondition    []Bucket `json:"by_condition"`
	ByState        []Bucket `json:"by_state"`
	ByRegion       []Bucket `json:"by_region"`
	ByCity         []Bucket `json:"by_city"`
	ByCounty       []Bucket `json:"by_county"`
}

// EmptySummary returns the zero-valued summary with non-nil breakdowns.
func EmptySummary() Summary {
	return Summary{
		ByRVType:       []Bucket{},
		ByDealerGroup:  []Bucket{},
		ByManufacturer: []Bucket{},
		ByCondition:    []Bucket{},
		ByState:        []Bucket{},
		ByRegion:       []Bucket{},
		ByCity:         []Bucket{},
		ByCounty:       []Bucket{},
	}
}

// Totals is the ungrouped part of a summary.
type Totals struct {
	Units       int64
	PricedUnits int64
	TotalValue  float64
	AvgPrice    float64
	MinPrice    float64
	MaxPrice    float64
}

// ComputeTotals folds every row of t into ungrouped totals.
func ComputeTotals[R Row](t Table[R]) Totals {
	var stats priceStats
	for _, r := range t.Rows {
		if amount, ok := AmountDecimal(r.Amount()); ok {
			stats.add(amount)
		}
	}
	out := Totals{Units: int64(len(t.Rows)), PricedUnits: stats.n}
	if stats.n > 0 {
		out.TotalValue = toFloat(stats.sum)
		out.AvgPrice = toFloat(stats.avg())
		out.MinPrice = toFloat(stats.min)
		out.MaxPrice = toFloat(stats.max)
	}
	return out
}

// Summarize computes totals and every breakdown of t. The unfiltered snapshot
// held by the cache is Summarize over the full inventory; there is no other path.
func Summarize(t InventoryTable, limits DisplayLimits, opts Options) Summary {
	if len(t.Rows) == 0 {
		return EmptySummary()
	}
	totals := ComputeTotals(t)
	by := func(f Field) []Bucket { return AggregateWith(t, f, limits.For(f), opts) }
	return Summary{
		TotalUnits:     totals.Units,
		TotalValue:     totals.TotalValue,
		AvgPrice:       totals.AvgPrice,
		MinPrice:       totals.MinPrice,
		MaxPrice:       totals.MaxPrice,
		ByRVType:       by(FieldRVType),
		ByDealerGroup:  by(FieldDealerGroup),
		ByManufacturer: by(FieldManufacturer),
		ByCondition:    by(FieldCondition),
		ByState:        by(FieldState),
		ByRegion:       by(FieldRegion),
		ByCity:         by(FieldCity),
		ByCounty:       by(FieldCounty),
	}
}
