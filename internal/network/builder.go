package network

import (
	"time"

	"github.com/paulmach/orb/geo"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/model"
	"github.com/safemap/saferoute/internal/proj"
	"github.com/safemap/saferoute/internal/risk"
)

// BuildParams configures the risk field and edge risk derivation for a
// snapshot build.
type BuildParams struct {
	RadiusM         float64 // hazard influence cutoff, meters
	DecayM          float64 // exponential decay length scale, meters
	EdgeAggregation string  // risk.AggregationMax or risk.AggregationMean
}

// Build assembles a fully-weighted immutable snapshot from a base network,
// a hazard observation set, and the configured profile set. It projects all
// geometry, computes the per-node risk field, derives edge risk, and
// materializes one composite weight column per profile. A failed build
// returns an error and publishes nothing.
func Build(mode string, base *Base, hazards []hazard.Observation, profiles model.Profiles, params BuildParams) (*Snapshot, error) {
	if base == nil || len(base.Nodes) == 0 {
		return nil, eris.Errorf("network: base network for mode %q is empty", mode)
	}
	if err := profiles.Validate(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		Mode:       mode,
		Nodes:      make([]Node, len(base.Nodes)),
		Edges:      make([]Edge, 0, len(base.Edges)),
		Profiles:   profiles,
		BuiltAt:    time.Now().UTC(),
		profileIdx: make(map[string]int, len(profiles)),
		nodeByRef:  make(map[int64]NodeID, len(base.Nodes)),
	}
	for i, p := range profiles {
		s.profileIdx[p.Tag] = i
	}

	for i, bn := range base.Nodes {
		xy, err := proj.Project(bn.Lon, bn.Lat)
		if err != nil {
			return nil, eris.Wrapf(err, "network: node ref %d", bn.Ref)
		}
		s.Nodes[i] = Node{
			ID:    NodeID(i),
			Ref:   bn.Ref,
			Point: [2]float64{bn.Lon, bn.Lat},
			XY:    xy,
		}
		s.nodeByRef[bn.Ref] = NodeID(i)
	}

	s.out = make([][]int32, len(s.Nodes))
	for _, be := range base.Edges {
		from, ok := s.nodeByRef[be.From]
		if !ok {
			return nil, eris.Errorf("network: edge references unknown node %d", be.From)
		}
		to, ok := s.nodeByRef[be.To]
		if !ok {
			return nil, eris.Errorf("network: edge references unknown node %d", be.To)
		}
		if len(be.Geometry) < 2 {
			return nil, eris.Errorf("network: edge %d->%d key %d has fewer than 2 geometry points", be.From, be.To, be.Key)
		}
		shape, err := proj.ProjectLine(be.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "network: edge %d->%d key %d", be.From, be.To, be.Key)
		}
		length := be.Length
		if length <= 0 {
			length = geo.Length(be.Geometry)
		}
		if length <= 0 {
			return nil, eris.Errorf("network: edge %d->%d key %d has non-positive length", be.From, be.To, be.Key)
		}
		id := int32(len(s.Edges))
		s.Edges = append(s.Edges, Edge{
			ID:       id,
			From:     from,
			To:       to,
			Key:      be.Key,
			Length:   length,
			Geometry: be.Geometry,
			XYShape:  shape,
		})
		s.out[from] = append(s.out[from], id)
	}

	if err := applyRiskField(s, hazards, params); err != nil {
		return nil, err
	}
	materializeWeights(s)

	zap.L().Info("network snapshot built",
		zap.String("mode", mode),
		zap.Int("nodes", len(s.Nodes)),
		zap.Int("edges", len(s.Edges)),
		zap.Int("hazards", len(hazards)),
		zap.Int("profiles", len(profiles)),
	)
	return s, nil
}

// applyRiskField computes the decayed hazard sum for every node, then
// derives edge risk from the endpoint risks.
func applyRiskField(s *Snapshot, hazards []hazard.Observation, params BuildParams) error {
	sources := make([]risk.Source, 0, len(hazards))
	for _, h := range hazards {
		if err := h.Validate(); err != nil {
			return err
		}
		xy, err := proj.Project(h.Lon, h.Lat)
		if err != nil {
			return eris.Wrap(err, "network: hazard observation")
		}
		sources = append(sources, risk.Source{XY: xy, Severity: h.Severity})
	}

	idx := risk.NewIndex(params.RadiusM, sources)
	rp := risk.Params{RadiusM: params.RadiusM, DecayM: params.DecayM}
	for i := range s.Nodes {
		s.Nodes[i].Risk = risk.Accumulate(s.Nodes[i].XY, idx, rp)
	}
	for i := range s.Edges {
		e := &s.Edges[i]
		e.Risk = risk.EdgeRisk(s.Nodes[e.From].Risk, s.Nodes[e.To].Risk, params.EdgeAggregation)
	}
	return nil
}
