package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/rvmarket-lab/rv-intel/internal/core/aggregation"
	"github.com/rvmarket-lab/rv-intel/internal/joiner"
)

// Generation is one complete, immutable build of the cache. Readers share it
// without locking; a refresh builds a new Generation and swaps it in.
type Generation struct {
	ID            uuid.UUID
	Backend       string
	BuiltAt       time.Time
	BuildDuration time.Duration

	Inventory aggregation.InventoryTable
	Sales     aggregation.SalesTable

	// Limits and AggOptions are the settings every summary of this generation
	// must be computed with, precomputed or not.
	Limits     aggregation.DisplayLimits
	AggOptions aggregation.Options

	Unfiltered         aggregation.Summary
	UnfilteredVelocity aggregation.Velocity
	Snapshots          map[aggregation.SnapshotKey]aggregation.Summary
	VelocitySnapshots  map[aggregation.SnapshotKey]aggregation.Velocity

	FilterOptions aggregation.FilterOptions
	Dealers       []string
	DateRange     aggregation.DateRange
	JoinStats     joiner.Stats
}

// Snapshot returns the precomputed summary for key.
func (g *Generation) Snapshot(key aggregation.SnapshotKey) (aggregation.Summary, bool) {
	s, ok := g.Snapshots[key]
	return s, ok
}

// VelocitySnapshot returns the precomputed sales velocity for key.
func (g *Generation) VelocitySnapshot(key aggregation.SnapshotKey) (aggregation.Velocity, bool) {
	v, ok := g.VelocitySnapshots[key]
	return v, ok
}

// Summarize runs the engine over inventory with this generation's settings.
func (g *Generation) Summarize(c aggregation.Criteria) aggregation.Summary {
	return aggregation.Summarize(aggregation.Filter(g.Inventory, c), g.Limits, g.AggOptions)
}

// Velocity runs the engine over sales with this generation's settings.
func (g *Generation) Velocity(c aggregation.Criteria) aggregation.Velocity {
	return aggregation.SalesVelocity(aggregation.Filter(g.Sales, c), g.Limits)
}
