package aggregation

import (
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

const defaultChunkSize = 25000

// Bucket is the aggregated result for one value of a group-by field.
// Price statistics cover only records with a non-null amount and are zero when
// the bucket has none.
type Bucket struct {
	Name         string   `json:"name"`
	Count        int64    `json:"count"`
	TotalValue   float64  `json:"total_value"`
	AvgPrice     float64  `json:"avg_price"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	AvgDaysOnLot *float64 `json:"avg_days_on_lot,omitempty"`
}

// Partial is a bucket aggregated over one batch of records. Batches that only
// report averages (remote group-by results) leave TotalValue as the batch sum
// reported by the source.
type Partial struct {
	Name        string
	Count       int64
	PricedCount int64
	TotalValue  decimal.Decimal
	AvgPrice    decimal.Decimal
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	DaysCount   int64
	AvgDays     decimal.Decimal
}

// CombineWeighted merges partial aggregates of the same bucket. Averages are
// recombined weighted by the number of records behind each one:
// Σ(avg_i × n_i) / Σ n_i. An unweighted mean of the averages is wrong whenever
// batch sizes differ.
func CombineWeighted(partials []Partial) Bucket {
	if len(partials) == 0 {
		return Bucket{}
	}
	if len(partials) == 1 {
		return partials[0].bucket()
	}

	merged := Partial{Name: partials[0].Name}
	var weightedPrice, weightedDays decimal.Decimal
	for _, p := range partials {
		merged.Count += p.Count
		merged.TotalValue = Operators[OpSum].Apply(merged.TotalValue, p.TotalValue)
		if p.PricedCount > 0 {
			if merged.PricedCount == 0 {
				merged.MinPrice = Operators[OpMin].Initial(p.MinPrice)
				merged.MaxPrice = Operators[OpMax].Initial(p.MaxPrice)
			} else {
				merged.MinPrice = Operators[OpMin].Apply(merged.MinPrice, p.MinPrice)
				merged.MaxPrice = Operators[OpMax].Apply(merged.MaxPrice, p.MaxPrice)
			}
			merged.PricedCount += p.PricedCount
			weightedPrice = weightedPrice.Add(p.AvgPrice.Mul(decimal.NewFromInt(p.PricedCount)))
		}
		if p.DaysCount > 0 {
			merged.DaysCount += p.DaysCount
			weightedDays = weightedDays.Add(p.AvgDays.Mul(decimal.NewFromInt(p.DaysCount)))
		}
	}
	if merged.PricedCount > 0 {
		merged.AvgPrice = weightedPrice.Div(decimal.NewFromInt(merged.PricedCount))
	}
	if merged.DaysCount > 0 {
		merged.AvgDays = weightedDays.Div(decimal.NewFromInt(merged.DaysCount))
	}
	return merged.bucket()
}

func (p Partial) bucket() Bucket {
	b := Bucket{
		Name:       p.Name,
		Count:      p.Count,
		TotalValue: toFloat(p.TotalValue),
	}
	if p.PricedCount > 0 {
		b.AvgPrice = toFloat(p.AvgPrice)
		b.MinPrice = toFloat(p.MinPrice)
		b.MaxPrice = toFloat(p.MaxPrice)
	}
	if p.DaysCount > 0 {
		avg := toFloat(p.AvgDays)
		b.AvgDaysOnLot = &avg
	}
	return b
}

// groupAcc accumulates one bucket within one batch.
type groupAcc struct {
	count   int64
	prices  priceStats
	daysSum int64
	daysN   int64
}

func (g *groupAcc) partial(name string) Partial {
	p := Partial{
		Name:        name,
		Count:       g.count,
		PricedCount: g.prices.n,
		TotalValue:  g.prices.sum,
		AvgPrice:    g.prices.avg(),
		MinPrice:    g.prices.min,
		MaxPrice:    g.prices.max,
		DaysCount:   g.daysN,
	}
	if g.daysN > 0 {
		p.AvgDays = decimal.NewFromInt(g.daysSum).Div(decimal.NewFromInt(g.daysN))
	}
	return p
}

// Options tunes how Aggregate spreads work across goroutines. Results depend only
// on the input rows and ChunkSize, never on Workers or scheduling.
type Options struct {
	// ParallelThreshold is the row count at which aggregation is chunked.
	// Zero or negative disables chunking.
	ParallelThreshold int
	ChunkSize         int
	Workers           int
}

func (o Options) normalized() Options {
	n := o
	if n.ChunkSize <= 0 {
		n.ChunkSize = defaultChunkSize
	}
	if n.Workers <= 0 {
		n.Workers = runtime.GOMAXPROCS(0)
	}
	return n
}

// Aggregate groups t by f and returns buckets sorted by count descending, ties by
// name ascending. Null values group under UnknownLabel. limit > 0 truncates the
// returned buckets only. A field whose column t lacks yields an empty slice.
func Aggregate[R Row](t Table[R], f Field, limit int) []Bucket {
	return AggregateWith(t, f, limit, Options{})
}

// AggregateWith is Aggregate with explicit parallelism options.
func AggregateWith[R Row](t Table[R], f Field, limit int, opts Options) []Bucket {
	if !t.Columns.Has(f) || len(t.Rows) == 0 {
		return []Bucket{}
	}
	opts = opts.normalized()
	withDays := t.Columns.HasColumn(ColDaysOnLot)

	var partials map[string][]Partial
	if opts.ParallelThreshold > 0 && len(t.Rows) >= opts.ParallelThreshold {
		partials = aggregateChunked(t.Rows, f, withDays, opts)
	} else {
		groups := groupRows(t.Rows, f, withDays)
		partials = make(map[string][]Partial, len(groups))
		for name, g := range groups {
			partials[name] = []Partial{g.partial(name)}
		}
	}

	buckets := make([]Bucket, 0, len(partials))
	for _, ps := range partials {
		buckets = append(buckets, CombineWeighted(ps))
	}
	SortBuckets(buckets)
	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

// SortBuckets orders by count descending, then name ascending.
func SortBuckets(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Name < buckets[j].Name
	})
}

func groupKey(v *string) string {
	if v == nil {
		return UnknownLabel
	}
	return *v
}

func groupRows[R Row](rows []R, f Field, withDays bool) map[string]*groupAcc {
	groups := make(map[string]*groupAcc)
	for _, r := range rows {
		name := groupKey(r.Attr(f))
		g, ok := groups[name]
		if !ok {
			g = &groupAcc{}
			groups[name] = g
		}
		g.count++
		if amount, ok := AmountDecimal(r.Amount()); ok {
			g.prices.add(amount)
		}
		if withDays {
			if d := r.Days(); d != nil {
				g.daysSum += int64(*d)
				g.daysN++
			}
		}
	}
	return groups
}

// aggregateChunked splits rows into contiguous chunks, aggregates each chunk on a
// worker pool and returns every bucket's partials in chunk order.
func aggregateChunked[R Row](rows []R, f Field, withDays bool, opts Options) map[string][]Partial {
	chunkCount := (len(rows) + opts.ChunkSize - 1) / opts.ChunkSize
	results := make([]map[string]*groupAcc, chunkCount)

	jobs := make(chan int, chunkCount)
	for i := 0; i < chunkCount; i++ {
		jobs <- i
	}
	close(jobs)

	workerCount := min(opts.Workers, chunkCount)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				lo := idx * opts.ChunkSize
				hi := min(lo+opts.ChunkSize, len(rows))
				results[idx] = groupRows(rows[lo:hi], f, withDays)
			}
		}()
	}
	wg.Wait()

	merged := make(map[string][]Partial)
	for _, groups := range results {
		for name, g := range groups {
			merged[name] = append(merged[name], g.partial(name))
		}
	}
	return merged
}
