// Package proj converts WGS84 geographic coordinates into the planar
// web-mercator (EPSG:3857) system shared by the street network and the
// hazard data, so Euclidean distances are meaningful in meters.
package proj

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// halfCircumference is the EPSG:3857 extent in meters.
const halfCircumference = 20037508.34

// maxLat is the latitude limit of the EPSG:3857 projection. The mercator y
// diverges toward the poles, so latitudes beyond the limit are clamped to
// keep planar coordinates finite.
const maxLat = 85.05112878

// ErrOutOfRange is returned for coordinates outside the valid geographic
// range (|lat| > 90 or |lon| > 180).
var ErrOutOfRange = eris.New("proj: coordinate outside geographic range")

// Project converts a lon/lat pair to planar x/y meters. Latitudes past the
// mercator limit (but still within ±90) are clamped to it.
func Project(lon, lat float64) (orb.Point, error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.Abs(lon) > 180 || math.Abs(lat) > 90 {
		return orb.Point{}, eris.Wrapf(ErrOutOfRange, "lon=%f lat=%f", lon, lat)
	}
	lat = math.Min(math.Max(lat, -maxLat), maxLat)
	x := lon * halfCircumference / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * halfCircumference / 180
	return orb.Point{x, y}, nil
}

// ProjectPoint converts a geographic orb.Point to planar meters.
func ProjectPoint(pt orb.Point) (orb.Point, error) {
	return Project(pt.Lon(), pt.Lat())
}

// ProjectLine converts every vertex of a geographic line to planar meters.
func ProjectLine(line orb.LineString) (orb.LineString, error) {
	out := make(orb.LineString, len(line))
	for i, pt := range line {
		p, err := ProjectPoint(pt)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Unproject converts planar x/y meters back to a lon/lat point.
func Unproject(x, y float64) orb.Point {
	lon := x * 180 / halfCircumference
	lat := math.Atan(math.Exp(y*math.Pi/halfCircumference))*360/math.Pi - 90
	return orb.Point{lon, lat}
}
