package route

import (
	geojson "github.com/paulmach/go.geojson"
)

// GeoJSON renders the route as a FeatureCollection with one LineString
// feature carrying the profile and statistics as properties.
func (r *Route) GeoJSON() *geojson.FeatureCollection {
	coords := make([][]float64, len(r.Geometry))
	for i, pt := range r.Geometry {
		coords[i] = []float64{pt.Lon(), pt.Lat()}
	}

	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("profile", r.Profile.Tag)
	f.SetProperty("beta", r.Profile.Beta)
	f.SetProperty("name", r.Profile.Name)
	f.SetProperty("color", r.Profile.Color)
	f.SetProperty("length_m", r.Stats.LengthM)
	f.SetProperty("mean_risk", r.Stats.MeanRisk)

	fc := geojson.NewFeatureCollection()
	fc.AddFeature(f)
	return fc
}
