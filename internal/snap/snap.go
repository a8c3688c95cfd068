// Package snap maps arbitrary geographic query points onto the nearest
// usable network position. Snapping goes through the nearest edge rather
// than the nearest node directly, so the interior of long street segments is
// accounted for, then settles on the nearer endpoint of that edge.
package snap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rotisserie/eris"

	"github.com/safemap/saferoute/internal/network"
	"github.com/safemap/saferoute/internal/proj"
)

// ErrNoCoverage is returned when the snapshot has nothing to snap to.
var ErrNoCoverage = eris.New("snap: no network coverage")

// Result is the entry point chosen for a route request. OffsetM is the
// distance from the query point to the chosen node (the effective snapped
// location); EdgeDistM is the raw point-to-edge distance that drove edge
// selection.
type Result struct {
	Node      network.NodeID
	Ref       int64
	Point     orb.Point // geographic position of the chosen node
	OffsetM   float64
	EdgeDistM float64
}

// Nearest snaps a lon/lat query point onto the snapshot. It scans every
// edge's planar shape for the minimum point-to-polyline distance, then picks
// the geometrically nearer endpoint of the winning edge, preferring the
// source endpoint on exact ties. With zero edges it falls back to the
// nearest node by coordinate.
func Nearest(s *network.Snapshot, lon, lat float64) (*Result, error) {
	pt, err := proj.Project(lon, lat)
	if err != nil {
		return nil, err
	}

	if len(s.Edges) == 0 {
		return nearestNode(s, pt)
	}

	bestEdge := -1
	bestDist := 0.0
	for i := range s.Edges {
		shape := s.Edges[i].XYShape
		var d float64
		if len(shape) >= 2 {
			d = planar.DistanceFrom(shape, pt)
		} else {
			// straight segment between endpoints when no detailed shape exists
			u, v := &s.Nodes[s.Edges[i].From], &s.Nodes[s.Edges[i].To]
			d = planar.DistanceFrom(orb.LineString{u.XY, v.XY}, pt)
		}
		if bestEdge < 0 || d < bestDist {
			bestEdge = i
			bestDist = d
		}
	}

	e := &s.Edges[bestEdge]
	u, v := &s.Nodes[e.From], &s.Nodes[e.To]
	du := planar.Distance(u.XY, pt)
	dv := planar.Distance(v.XY, pt)
	chosen := u
	offset := du
	if dv < du {
		chosen = v
		offset = dv
	}
	return &Result{
		Node:      chosen.ID,
		Ref:       chosen.Ref,
		Point:     chosen.Point,
		OffsetM:   offset,
		EdgeDistM: bestDist,
	}, nil
}

func nearestNode(s *network.Snapshot, pt orb.Point) (*Result, error) {
	if len(s.Nodes) == 0 {
		return nil, eris.Wrap(ErrNoCoverage, "empty network")
	}
	best := 0
	bestDist := planar.Distance(s.Nodes[0].XY, pt)
	for i := 1; i < len(s.Nodes); i++ {
		if d := planar.Distance(s.Nodes[i].XY, pt); d < bestDist {
			best = i
			bestDist = d
		}
	}
	n := &s.Nodes[best]
	return &Result{
		Node:      n.ID,
		Ref:       n.Ref,
		Point:     n.Point,
		OffsetM:   bestDist,
		EdgeDistM: bestDist,
	}, nil
}
