// Package risk aggregates point hazard observations into a per-node risk
// field via exponential spatial decay.
//
// The field is a raw decayed sum: for each node at planar position p, every
// observation within Params.RadiusM contributes severity * exp(-d/DecayM).
// No normalization is applied, so profile betas are calibrated against raw
// severity magnitudes. Aggregation order follows input order, which keeps
// repeated builds from identical inputs bit-identical.
package risk

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Params holds the decay configuration. RadiusM is the influence cutoff and
// DecayM the exponential length scale, both in planar meters.
type Params struct {
	RadiusM float64
	DecayM  float64
}

// Source is a single hazard observation projected into planar space.
type Source struct {
	XY       orb.Point
	Severity float64
}

// Accumulate returns the decayed severity sum at planar position p over the
// sources the index reports near p.
func Accumulate(p orb.Point, idx *Index, params Params) float64 {
	sum := 0.0
	for _, src := range idx.Near(p) {
		d := planar.Distance(p, src.XY)
		if d > params.RadiusM {
			continue
		}
		sum += src.Severity * math.Exp(-d/params.DecayM)
	}
	return sum
}

// EdgeRisk combines the endpoint risks of an edge. Aggregation "mean" must be
// selected explicitly in configuration; anything else means "max".
func EdgeRisk(u, v float64, aggregation string) float64 {
	if aggregation == AggregationMean {
		return (u + v) / 2
	}
	return math.Max(u, v)
}

// Edge risk aggregation policies.
const (
	AggregationMax  = "max"
	AggregationMean = "mean"
)
