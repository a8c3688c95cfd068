package route

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/safemap/saferoute/internal/model"
	"github.com/safemap/saferoute/internal/network"
)

// Stats is the accumulated cost bundle for one reconstructed route. DetourM
// and RiskDelta are only populated by Multi, relative to the beta=0 baseline
// of the same request.
type Stats struct {
	TotalWeight    float64 `json:"total_weight"`
	LengthM        float64 `json:"length_m"`
	RiskLengthSumM float64 `json:"risk_length_sum_m"`
	MeanRisk       float64 `json:"mean_risk"`
	DetourM        float64 `json:"detour_m_vs_baseline"`
	RiskDelta      float64 `json:"risk_delta_vs_baseline"`
}

// Route is one computed path with its geometry and statistics. It is
// per-request data over an immutable snapshot; nothing here refers back to
// mutable state.
type Route struct {
	Mode     string           `json:"mode"`
	Profile  model.Profile    `json:"profile"`
	Nodes    []network.NodeID `json:"-"`
	NodeRefs []int64          `json:"node_refs"`
	Geometry orb.LineString   `json:"-"`
	Stats    Stats            `json:"stats"`
}

// Reconstruct resolves, for each consecutive node pair of the path, the same
// minimum-weight parallel edge the planner traversed (shared tie-break in
// Snapshot.MinEdgeBetween), stitches the edge geometries into one continuous
// line, and accumulates the statistics. Duplicate vertices at segment joins
// are dropped; segments that do not touch are appended in full, a
// data-quality tolerance rather than an error. A single-node path, where
// origin and destination coincide on the network, yields an empty-geometry
// route with all-zero stats.
func Reconstruct(s *network.Snapshot, path []network.NodeID, profileTag string) (*Route, error) {
	pi, err := s.ProfileIndex(profileTag)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, eris.New("route: empty path")
	}

	profile := s.Profiles[pi]
	r := &Route{
		Mode:     s.Mode,
		Profile:  profile,
		Nodes:    append([]network.NodeID(nil), path...),
		NodeRefs: make([]int64, len(path)),
	}
	for i, n := range path {
		r.NodeRefs[i] = s.Nodes[n].Ref
	}

	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		ei, ok := s.MinEdgeBetween(u, v, pi)
		if !ok {
			return nil, eris.Errorf("route: nodes %d and %d are not adjacent", u, v)
		}
		e := &s.Edges[ei]

		r.Stats.TotalWeight += e.Weights[pi]
		r.Stats.LengthM += e.Length
		r.Stats.RiskLengthSumM += e.Length * e.Risk

		seg := e.Geometry
		if n := len(r.Geometry); n > 0 && r.Geometry[n-1] == seg[0] {
			seg = seg[1:]
		}
		r.Geometry = append(r.Geometry, seg...)
	}

	if r.Stats.LengthM > 0 {
		r.Stats.MeanRisk = r.Stats.RiskLengthSumM / r.Stats.LengthM
	}
	return r, nil
}
