package network

import (
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// LoadShapefile reads a base network from an ESRI shapefile of polyline
// segments. The DBF must carry FROM_ID and TO_ID fields; KEY, LENGTH_M and
// ONEWAY are optional, with the same semantics as the GeoJSON loader.
func LoadShapefile(path string) (*Base, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "network: open shapefile %s", path)
	}
	defer reader.Close() //nolint:errcheck

	fromIdx := fieldIndex(reader, "FROM_ID")
	toIdx := fieldIndex(reader, "TO_ID")
	if fromIdx < 0 || toIdx < 0 {
		return nil, eris.New("network: shapefile needs FROM_ID and TO_ID fields")
	}
	keyIdx := fieldIndex(reader, "KEY")
	lengthIdx := fieldIndex(reader, "LENGTH_M")
	onewayIdx := fieldIndex(reader, "ONEWAY")

	base := &Base{}
	seen := make(map[int64]bool)
	for reader.Next() {
		row, shape := reader.Shape()
		line, ok := polylinePoints(shape)
		if !ok || len(line) < 2 {
			return nil, eris.Errorf("network: record %d is not a usable polyline", row)
		}

		from, err := intAttribute(reader, fromIdx)
		if err != nil {
			return nil, eris.Wrapf(err, "network: record %d FROM_ID", row)
		}
		to, err := intAttribute(reader, toIdx)
		if err != nil {
			return nil, eris.Wrapf(err, "network: record %d TO_ID", row)
		}

		var key int64
		if keyIdx >= 0 {
			key, _ = intAttribute(reader, keyIdx)
		}
		var length float64
		if lengthIdx >= 0 {
			length, _ = strconv.ParseFloat(strings.TrimSpace(reader.Attribute(lengthIdx)), 64)
		}
		oneway := false
		if onewayIdx >= 0 {
			v := strings.ToLower(strings.TrimSpace(reader.Attribute(onewayIdx)))
			oneway = v == "1" || v == "true" || v == "yes"
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

// polylinePoints flattens a shapefile polyline into one coordinate sequence.
// Street segments are single-part in practice; multi-part records are
// concatenated in part order.
func polylinePoints(shape shp.Shape) (orb.LineString, bool) {
	pl, ok := shape.(*shp.PolyLine)
	if !ok {
		return nil, false
	}
	line := make(orb.LineString, len(pl.Points))
	for i, pt := range pl.Points {
		line[i] = orb.Point{pt.X, pt.Y}
	}
	return line, true
}

// fieldIndex returns the index of a named DBF field, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func intAttribute(reader *shp.Reader, field int) (int64, error) {
	raw := strings.TrimSpace(reader.Attribute(field))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse %q", raw)
	}
	return v, nil
}
