package route

import (
	"github.com/safemap/saferoute/internal/network"
)

// Multi computes one route per profile tag between the same endpoints and
// attaches each route's detour and risk-exposure delta relative to the
// beta=0 baseline of the batch. Tags default to the snapshot's full profile
// set when empty, in configuration order.
func Multi(s *network.Snapshot, origin, dest network.NodeID, tags []string) ([]*Route, error) {
	if len(tags) == 0 {
		tags = s.Profiles.Tags()
	}

	routes := make([]*Route, 0, len(tags))
	for _, tag := range tags {
		path, err := Shortest(s, origin, dest, tag)
		if err != nil {
			return nil, err
		}
		r, err := Reconstruct(s, path, tag)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}

	baseline := routes[0]
	for _, r := range routes {
		if r.Profile.IsBaseline() {
			baseline = r
			break
		}
	}
	for _, r := range routes {
		r.Stats.DetourM = r.Stats.LengthM - baseline.Stats.LengthM
		r.Stats.RiskDelta = r.Stats.RiskLengthSumM - baseline.Stats.RiskLengthSumM
	}
	return routes, nil
}
