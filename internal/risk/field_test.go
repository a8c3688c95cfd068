package risk

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{RadiusM: 300, DecayM: 150}

func TestAccumulateDecay(t *testing.T) {
	t.Parallel()

	// Single severity-500 hazard at the origin. A node on top of it must
	// score higher than one 250 m away, and one 400 m away scores zero.
	idx := NewIndex(testParams.RadiusM, []Source{
		{XY: orb.Point{0, 0}, Severity: 500},
	})

	at0 := Accumulate(orb.Point{0, 0}, idx, testParams)
	at250 := Accumulate(orb.Point{250, 0}, idx, testParams)
	at400 := Accumulate(orb.Point{400, 0}, idx, testParams)

	assert.InDelta(t, 500, at0, 1e-9)
	assert.InDelta(t, 500*math.Exp(-250.0/150.0), at250, 1e-9)
	assert.Greater(t, at0, at250)
	assert.Zero(t, at400)
}

func TestAccumulateNoSources(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testParams.RadiusM, nil)
	assert.Zero(t, Accumulate(orb.Point{10, 10}, idx, testParams))
}

func TestAccumulateSumsMultipleSources(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testParams.RadiusM, []Source{
		{XY: orb.Point{0, 0}, Severity: 100},
		{XY: orb.Point{150, 0}, Severity: 100},
		{XY: orb.Point{1000, 0}, Severity: 9999}, // out of radius
	})
	got := Accumulate(orb.Point{0, 0}, idx, testParams)
	want := 100.0 + 100*math.Exp(-1)
	assert.InDelta(t, want, got, 1e-9)
}

func TestAccumulateDeterministic(t *testing.T) {
	t.Parallel()

	sources := make([]Source, 0, 200)
	for i := 0; i < 200; i++ {
		sources = append(sources, Source{
			XY:       orb.Point{float64(i%17) * 40, float64(i%13) * 40},
			Severity: float64(i%7) + 0.5,
		})
	}
	a := Accumulate(orb.Point{300, 300}, NewIndex(testParams.RadiusM, sources), testParams)
	b := Accumulate(orb.Point{300, 300}, NewIndex(testParams.RadiusM, sources), testParams)
	assert.Equal(t, a, b)
}

func TestIndexNearCoversRadius(t *testing.T) {
	t.Parallel()

	// A source just inside the radius but in a neighboring cell must still
	// be a candidate.
	idx := NewIndex(300, []Source{{XY: orb.Point{299, 0}, Severity: 1}})
	got := idx.Near(orb.Point{0, 0})
	require.Len(t, got, 1)

	// Far sources never appear.
	idx = NewIndex(300, []Source{{XY: orb.Point{2000, 2000}, Severity: 1}})
	assert.Empty(t, idx.Near(orb.Point{0, 0}))
}

func TestIndexNearNegativeCoordinates(t *testing.T) {
	t.Parallel()

	idx := NewIndex(300, []Source{{XY: orb.Point{-150, -150}, Severity: 1}})
	assert.Len(t, idx.Near(orb.Point{-10, -10}), 1)
	assert.Equal(t, 1, idx.Len())
}

func TestEdgeRiskAggregation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5.0, EdgeRisk(5, 3, AggregationMax))
	assert.Equal(t, 5.0, EdgeRisk(3, 5, AggregationMax))
	assert.Equal(t, 4.0, EdgeRisk(5, 3, AggregationMean))
	// Unknown policies fall back to max, never silently to mean.
	assert.Equal(t, 5.0, EdgeRisk(5, 3, ""))
}
