// Package model holds the shared domain types exchanged between the routing
// core, the hazard store, and the request layer.
package model

import (
	"github.com/rotisserie/eris"
)

// ErrUnknownProfile is returned when a requested profile tag is not part of
// the configured profile set.
var ErrUnknownProfile = eris.New("model: unknown profile")

// Profile is a named risk-aversion level. Beta scales how strongly edge risk
// inflates traversal cost: weight = length * (1 + beta * risk). Beta values
// are calibrated against raw decayed-sum risk (no normalization), matching
// the field produced by the risk package.
type Profile struct {
	Tag   string  `json:"tag" yaml:"tag" mapstructure:"tag"`
	Beta  float64 `json:"beta" yaml:"beta" mapstructure:"beta"`
	Name  string  `json:"name" yaml:"name" mapstructure:"name"`
	Color string  `json:"color" yaml:"color" mapstructure:"color"`
}

// IsBaseline reports whether this profile is the pure shortest-distance
// baseline.
func (p Profile) IsBaseline() bool { return p.Beta == 0 }

// Profiles is the configured profile set.
type Profiles []Profile

// Validate checks the profile set invariants: at least one member, unique
// tags, non-negative betas, and exactly one beta=0 baseline.
func (ps Profiles) Validate() error {
	if len(ps) == 0 {
		return eris.New("model: profile set is empty")
	}
	seen := make(map[string]bool, len(ps))
	baselines := 0
	for _, p := range ps {
		if p.Tag == "" {
			return eris.New("model: profile tag is required")
		}
		if seen[p.Tag] {
			return eris.Errorf("model: duplicate profile tag %q", p.Tag)
		}
		seen[p.Tag] = true
		if p.Beta < 0 {
			return eris.Errorf("model: profile %q has negative beta %f", p.Tag, p.Beta)
		}
		if p.IsBaseline() {
			baselines++
		}
	}
	if baselines != 1 {
		return eris.Errorf("model: profile set needs exactly one beta=0 baseline, found %d", baselines)
	}
	return nil
}

// ByTag returns the profile with the given tag.
func (ps Profiles) ByTag(tag string) (Profile, error) {
	for _, p := range ps {
		if p.Tag == tag {
			return p, nil
		}
	}
	return Profile{}, eris.Wrapf(ErrUnknownProfile, "tag %q", tag)
}

// Baseline returns the beta=0 member of the set.
func (ps Profiles) Baseline() (Profile, error) {
	for _, p := range ps {
		if p.IsBaseline() {
			return p, nil
		}
	}
	return Profile{}, eris.New("model: no beta=0 baseline in profile set")
}

// Tags returns the profile tags in set order.
func (ps Profiles) Tags() []string {
	tags := make([]string, len(ps))
	for i, p := range ps {
		tags[i] = p.Tag
	}
	return tags
}
