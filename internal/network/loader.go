package network

import (
	"io"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// Base is an unweighted street network as delivered by an external source:
// edge records referencing nodes by their stable external identifiers.
type Base struct {
	Nodes []BaseNode
	Edges []BaseEdge
}

// BaseNode is one intersection of the base network.
type BaseNode struct {
	Ref      int64
	Lon, Lat float64
}

// BaseEdge is one directed segment of the base network. Length may be zero,
// in which case the builder derives it from the geometry.
type BaseEdge struct {
	From, To int64
	Key      int32
	Length   float64
	Geometry orb.LineString
}

// LoadGeoJSON reads a base network from a GeoJSON FeatureCollection of edge
// LineStrings. Each feature needs integer "from" and "to" properties; "key",
// "length" and "oneway" are optional. Bidirectional edges emit one edge per
// direction with reversed geometry and the same key. Node positions are
// taken from the line endpoints.
func LoadGeoJSON(r io.Reader) (*Base, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "network: read geojson")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "network: parse geojson")
	}

	base := &Base{}
	seen := make(map[int64]bool)
	for i, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "LineString" {
			return nil, eris.Errorf("network: feature %d is not a LineString", i)
		}
		if len(f.Geometry.LineString) < 2 {
			return nil, eris.Errorf("network: feature %d has fewer than 2 points", i)
		}

		from, err := intProperty(f, "from")
		if err != nil {
			return nil, eris.Wrapf(err, "network: feature %d", i)
		}
		to, err := intProperty(f, "to")
		if err != nil {
			return nil, eris.Wrapf(err, "network: feature %d", i)
		}
		key := int64(0)
		if _, ok := f.Properties["key"]; ok {
			if key, err = intProperty(f, "key"); err != nil {
				return nil, eris.Wrapf(err, "network: feature %d", i)
			}
		}
		length := 0.0
		if v, ok := f.Properties["length"]; ok {
			length, _ = toFloat(v)
		}
		oneway := false
		if v, ok := f.Properties["oneway"].(bool); ok {
			oneway = v
		}

		line := make(orb.LineString, len(f.Geometry.LineString))
		for j, c := range f.Geometry.LineString {
			line[j] = orb.Point{c[0], c[1]}
		}

		if !seen[from] {
			seen[from] = true
			base.Nodes = append(base.Nodes, BaseNode{Ref: from, Lon: line[0].Lon(), Lat: line[0].Lat()})
		}
		if !seen[to] {
			seen[to] = true
			last := line[len(line)-1]
			base.Nodes = append(base.Nodes, BaseNode{Ref: to, Lon: last.Lon(), Lat: last.Lat()})
		}

		base.Edges = append(base.Edges, BaseEdge{
			From: from, To: to, Key: int32(key), Length: length, Geometry: line,
		})
		if !oneway {
			base.Edges = append(base.Edges, BaseEdge{
				From: to, To: from, Key: int32(key), Length: length, Geometry: reverseLine(line),
			})
		}
	}
	return base, nil
}

// LoadGeoJSONFile reads a base network from a GeoJSON file on disk.
func LoadGeoJSONFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "network: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return LoadGeoJSON(f)
}

func intProperty(f *geojson.Feature, name string) (int64, error) {
	v, ok := f.Properties[name]
	if !ok {
		return 0, eris.Errorf("missing %q property", name)
	}
	fv, ok := toFloat(v)
	if !ok {
		return 0, eris.Errorf("property %q is not numeric", name)
	}
	return int64(fv), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, pt := range line {
		out[len(line)-1-i] = pt
	}
	return out
}
