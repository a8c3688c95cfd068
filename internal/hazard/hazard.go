// Package hazard holds hazard observation records and their storage
// backends. Observations are immutable once loaded; a rebuild replaces the
// working set wholesale.
package hazard

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidObservation is returned for observations with missing or
// malformed required fields.
var ErrInvalidObservation = eris.New("hazard: invalid observation")

// Observation is a single point hazard record. Severity is a positive,
// unitless scalar; its magnitude only has meaning relative to the configured
// profile betas.
type Observation struct {
	ID       string  `json:"id,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Severity float64 `json:"severity"`
}

// Validate checks the required fields.
func (o Observation) Validate() error {
	if math.IsNaN(o.Lat) || math.IsNaN(o.Lon) || math.Abs(o.Lat) > 90 || math.Abs(o.Lon) > 180 {
		return eris.Wrapf(ErrInvalidObservation, "coordinates lat=%f lon=%f", o.Lat, o.Lon)
	}
	if math.IsNaN(o.Severity) || o.Severity <= 0 {
		return eris.Wrapf(ErrInvalidObservation, "severity %f", o.Severity)
	}
	return nil
}

// BBox is a geographic bounding box filter for listing observations.
type BBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Contains reports whether the observation lies inside the box.
func (b BBox) Contains(o Observation) bool {
	return o.Lon >= b.West && o.Lon <= b.East && o.Lat >= b.South && o.Lat <= b.North
}

// Store persists hazard observations between rebuilds.
type Store interface {
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error

	// Insert stores a batch of observations, validating each.
	Insert(ctx context.Context, obs []Observation) (int64, error)

	// List returns observations, optionally filtered to a bounding box,
	// ordered by insertion.
	List(ctx context.Context, bbox *BBox) ([]Observation, error)

	// Count returns the number of stored observations.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
