package aggregation

import (
	"github.com/shopspring/decimal"
)

// Aggregator defines how one statistic of a bucket folds over its priced records.
// To add a statistic: implement this interface and register it in Operators.
type Aggregator interface {
	// Initial returns the statistic after the first priced record of a bucket.
	// count -> 1; sum/min/max -> the amount itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds another amount into the current statistic.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

// Operators is the registry of bucket statistics.
var Operators = map[string]Aggregator{
	OpCount: countAgg{},
	OpSum:   sumAgg{},
	OpMin:   minAgg{},
	OpMax:   maxAgg{},
}

// ValidOperator reports whether op is a registered statistic.
func ValidOperator(op string) bool {
	_, ok := Operators[op]
	return ok
}

// countAgg increments by 1 per record. The amount is ignored.
type countAgg struct{}

func (countAgg) Initial(_ decimal.Decimal) decimal.Decimal    { return decimal.NewFromInt(1) }
func (countAgg) Apply(cur, _ decimal.Decimal) decimal.Decimal { return cur.Add(decimal.NewFromInt(1)) }

// sumAgg accumulates amounts exactly.
type sumAgg struct{}

func (sumAgg) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

type minAgg struct{}

func (minAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (minAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThan(cur) {
		return inc
	}
	return cur
}

type maxAgg struct{}

func (maxAgg) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxAgg) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// priceStats folds the registered statistics over a stream of amounts.
// The zero value is an empty accumulator.
type priceStats struct {
	n   int64
	sum decimal.Decimal
	min decimal.Decimal
	max decimal.Decimal
}

func (p *priceStats) add(v decimal.Decimal) {
	if p.n == 0 {
		p.sum = Operators[OpSum].Initial(v)
		p.min = Operators[OpMin].Initial(v)
		p.max = Operators[OpMax].Initial(v)
		p.n = 1
		return
	}
	p.sum = Operators[OpSum].Apply(p.sum, v)
	p.min = Operators[OpMin].Apply(p.min, v)
	p.max = Operators[OpMax].Apply(p.max, v)
	p.n++
}

// avg returns sum/n, or zero for an empty accumulator.
func (p priceStats) avg() decimal.Decimal {
	if p.n == 0 {
		return decimal.Zero
	}
	return p.sum.Div(decimal.NewFromInt(p.n))
}
