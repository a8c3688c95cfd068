// Package network holds the immutable street-network snapshot: typed node
// and edge records in contiguous slices, per-profile composite weights, and
// the atomically-swapped per-mode snapshot manager.
package network

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"github.com/safemap/saferoute/internal/model"
)

// NodeID indexes into Snapshot.Nodes.
type NodeID int32

// Node is a street intersection. Risk is written once per build and never
// mutated afterwards.
type Node struct {
	ID    NodeID
	Ref   int64     // stable external identifier from the base network
	Point orb.Point // geographic lon/lat
	XY    orb.Point // planar meters
	Risk  float64
}

// Edge is one directed physical street segment. Parallel edges between the
// same node pair are disambiguated by Key. Weights is indexed by profile
// position in Snapshot.Profiles.
type Edge struct {
	ID       int32
	From, To NodeID
	Key      int32
	Length   float64        // meters, > 0
	Geometry orb.LineString // geographic shape, at least 2 points
	XYShape  orb.LineString // planar shape, same vertex count
	Risk     float64
	Weights  []float64
}

// Snapshot is one fully-weighted network for a travel mode. It is never
// mutated after Build returns; request-time operations are pure reads.
type Snapshot struct {
	Mode     string
	Nodes    []Node
	Edges    []Edge
	Profiles model.Profiles
	BuiltAt  time.Time

	out        [][]int32
	profileIdx map[string]int
	nodeByRef  map[int64]NodeID
}

// Outgoing returns the edge indices leaving node n.
func (s *Snapshot) Outgoing(n NodeID) []int32 {
	return s.out[n]
}

// ProfileIndex resolves a profile tag to its weight column.
func (s *Snapshot) ProfileIndex(tag string) (int, error) {
	i, ok := s.profileIdx[tag]
	if !ok {
		return 0, eris.Wrapf(model.ErrUnknownProfile, "tag %q", tag)
	}
	return i, nil
}

// NodeByRef resolves an external node identifier to its snapshot index.
func (s *Snapshot) NodeByRef(ref int64) (NodeID, bool) {
	id, ok := s.nodeByRef[ref]
	return id, ok
}

// MinEdgeBetween picks the parallel edge from u to v with the minimum weight
// under the given profile column. Exact weight ties break to the lowest edge
// key. This is the single tie-break rule shared by the route planner and the
// route reconstructor; both must resolve the same edge identity.
func (s *Snapshot) MinEdgeBetween(u, v NodeID, profile int) (int32, bool) {
	best := int32(-1)
	for _, ei := range s.out[u] {
		e := &s.Edges[ei]
		if e.To != v {
			continue
		}
		if best < 0 {
			best = ei
			continue
		}
		b := &s.Edges[best]
		if e.Weights[profile] < b.Weights[profile] ||
			(e.Weights[profile] == b.Weights[profile] && e.Key < b.Key) {
			best = ei
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
