package network

// materializeWeights computes the composite weight column for every profile
// on every edge: weight = length * (1 + beta * risk). The beta=0 baseline
// column equals length exactly, so it always serves as the pure
// shortest-distance comparison. Runs in full on every build; there is no
// incremental update.
func materializeWeights(s *Snapshot) {
	for i := range s.Edges {
		e := &s.Edges[i]
		e.Weights = make([]float64, len(s.Profiles))
		for pi, p := range s.Profiles {
			if p.Beta == 0 {
				e.Weights[pi] = e.Length
				continue
			}
			e.Weights[pi] = e.Length * (1 + p.Beta*e.Risk)
		}
	}
}
