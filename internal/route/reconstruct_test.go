package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/network"
)

func TestReconstruct(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	path, err := Shortest(s, nodeRef(t, s, 1), nodeRef(t, s, 4), "b1")
	require.NoError(t, err)

	r, err := Reconstruct(s, path, "b1")
	require.NoError(t, err)

	assert.Equal(t, "walk", r.Mode)
	assert.Equal(t, "b1", r.Profile.Tag)
	assert.Equal(t, []int64{1, 3, 4}, r.NodeRefs)

	// Stats accumulate over the traversed edges.
	assert.Positive(t, r.Stats.LengthM)
	assert.Greater(t, r.Stats.TotalWeight, r.Stats.LengthM)
	assert.Positive(t, r.Stats.RiskLengthSumM)
	assert.InDelta(t, r.Stats.RiskLengthSumM/r.Stats.LengthM, r.Stats.MeanRisk, 1e-9)

	// Geometry is stitched into one continuous line with the shared join
	// vertex emitted once.
	require.Len(t, r.Geometry, 3)
	assert.Equal(t, s.Nodes[path[0]].Point, r.Geometry[0])
	assert.Equal(t, s.Nodes[path[1]].Point, r.Geometry[1])
	assert.Equal(t, s.Nodes[path[2]].Point, r.Geometry[2])
}

func TestReconstructBaselineWeightIsLength(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	path, err := Shortest(s, nodeRef(t, s, 1), nodeRef(t, s, 4), "b0")
	require.NoError(t, err)

	r, err := Reconstruct(s, path, "b0")
	require.NoError(t, err)
	assert.InDelta(t, r.Stats.LengthM, r.Stats.TotalWeight, 1e-9)
	// Risk exposure is still reported even though weight ignores it.
	assert.Positive(t, r.Stats.MeanRisk)
}

func TestReconstructSameNode(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	n := nodeRef(t, s, 2)

	// Origin and destination coincide: the planner hands back a one-node
	// path and reconstruction yields an empty route, not an error.
	path, err := Shortest(s, n, n, "b1")
	require.NoError(t, err)
	require.Equal(t, []network.NodeID{n}, path)

	r, err := Reconstruct(s, path, "b1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, r.NodeRefs)
	assert.Empty(t, r.Geometry)
	assert.Zero(t, r.Stats.TotalWeight)
	assert.Zero(t, r.Stats.LengthM)
	assert.Zero(t, r.Stats.MeanRisk)
}

func TestReconstructErrors(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, nil)

	_, err := Reconstruct(s, nil, "b0")
	assert.Error(t, err, "empty path")

	_, err = Reconstruct(s, []network.NodeID{nodeRef(t, s, 2), nodeRef(t, s, 3)}, "b0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not adjacent")

	_, err = Reconstruct(s, []network.NodeID{nodeRef(t, s, 1), nodeRef(t, s, 2)}, "b99")
	assert.Error(t, err)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	orig, dest := nodeRef(t, s, 1), nodeRef(t, s, 4)

	routes, err := Multi(s, orig, dest, nil)
	require.NoError(t, err)
	require.Len(t, routes, 3)

	// Configuration order is preserved.
	assert.Equal(t, "b0", routes[0].Profile.Tag)
	assert.Equal(t, "b03", routes[1].Profile.Tag)
	assert.Equal(t, "b1", routes[2].Profile.Tag)

	baseline, avoider := routes[0], routes[2]

	// Deltas are relative to the beta=0 baseline of the same batch.
	assert.Zero(t, baseline.Stats.DetourM)
	assert.Zero(t, baseline.Stats.RiskDelta)
	assert.Positive(t, avoider.Stats.DetourM, "risk avoidance costs distance")
	assert.Negative(t, avoider.Stats.RiskDelta, "the detour buys less risk exposure")
}

func TestMultiSubset(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	orig, dest := nodeRef(t, s, 1), nodeRef(t, s, 4)

	// Without a baseline in the request, deltas are relative to the first
	// requested profile.
	routes, err := Multi(s, orig, dest, []string{"b03", "b1"})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "b03", routes[0].Profile.Tag)
	assert.Zero(t, routes[0].Stats.DetourM)

	_, err = Multi(s, orig, dest, []string{"b03", "nope"})
	assert.Error(t, err)
}

func TestRouteGeoJSON(t *testing.T) {
	t.Parallel()

	s := buildDiamond(t, []hazard.Observation{{ID: "h1", Lat: 0, Lon: 0.001, Severity: 5}})
	path, err := Shortest(s, nodeRef(t, s, 1), nodeRef(t, s, 4), "b1")
	require.NoError(t, err)
	r, err := Reconstruct(s, path, "b1")
	require.NoError(t, err)

	fc := r.GeoJSON()
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]

	assert.Equal(t, "b1", f.Properties["profile"])
	assert.Equal(t, 1.0, f.Properties["beta"])
	assert.Equal(t, "#0fdf00", f.Properties["color"])
	assert.Len(t, f.Geometry.LineString, len(r.Geometry))
	assert.Equal(t, []float64{0, 0}, f.Geometry.LineString[0])
}
