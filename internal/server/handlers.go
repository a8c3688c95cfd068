package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/network"
	"github.com/safemap/saferoute/internal/route"
	"github.com/safemap/saferoute/internal/snap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modes := map[string]bool{}
	for _, mode := range s.manager.Modes() {
		_, err := s.manager.Snapshot(mode)
		modes[mode] = err == nil
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "modes": modes})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "geocoding is not configured"})
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	results, err := s.geocoder.Search(r.Context(), q)
	if err != nil {
		zap.L().Warn("geocode upstream failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "geocoding upstream failed"})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// endpoints parses and snaps the origin/destination query parameters shared
// by the route handlers.
func (s *Server) endpoints(r *http.Request) (*network.Snapshot, *snap.Result, *snap.Result, error) {
	q := r.URL.Query()
	mode := strings.ToLower(q.Get("mode"))
	if mode == "" {
		mode = "walk"
	}
	olat, err1 := strconv.ParseFloat(q.Get("orig_lat"), 64)
	olon, err2 := strconv.ParseFloat(q.Get("orig_lon"), 64)
	dlat, err3 := strconv.ParseFloat(q.Get("dest_lat"), 64)
	dlon, err4 := strconv.ParseFloat(q.Get("dest_lon"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, nil, nil, errBadCoordinates
	}

	snapshot, err := s.manager.Snapshot(mode)
	if err != nil {
		return nil, nil, nil, err
	}
	origin, err := snap.Nearest(snapshot, olon, olat)
	if err != nil {
		return nil, nil, nil, err
	}
	dest, err := snap.Nearest(snapshot, dlon, dlat)
	if err != nil {
		return nil, nil, nil, err
	}
	return snapshot, origin, dest, nil
}

var errBadCoordinates = eris.New("server: missing or invalid origin/destination")

type snappedPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routePayload struct {
	Profile   string                     `json:"profile"`
	Beta      float64                    `json:"beta"`
	Name      string                     `json:"name"`
	Color     string                     `json:"color"`
	GeoJSON   *geojson.FeatureCollection `json:"geojson"`
	Stats     route.Stats                `json:"stats"`
	NodeCount int                        `json:"node_count"`
}

func toPayload(r *route.Route) routePayload {
	return routePayload{
		Profile:   r.Profile.Tag,
		Beta:      r.Profile.Beta,
		Name:      r.Profile.Name,
		Color:     r.Profile.Color,
		GeoJSON:   r.GeoJSON(),
		Stats:     r.Stats,
		NodeCount: len(r.Nodes),
	}
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	snapshot, origin, dest, err := s.endpoints(r)
	if err != nil {
		if errors.Is(err, errBadCoordinates) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		writeError(w, err)
		return
	}

	tag := r.URL.Query().Get("profile")
	if tag == "" {
		tag = "b03"
	}
	path, err := route.Shortest(snapshot, origin.Node, dest.Node, tag)
	if err != nil {
		writeError(w, err)
		return
	}
	rt, err := route.Reconstruct(snapshot, path, tag)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":                snapshot.Mode,
		"snapped_origin":      snappedPoint{Lat: origin.Point.Lat(), Lon: origin.Point.Lon()},
		"snapped_destination": snappedPoint{Lat: dest.Point.Lat(), Lon: dest.Point.Lon()},
		"snap_dist_m": map[string]float64{
			"origin":      origin.OffsetM,
			"destination": dest.OffsetM,
		},
		"route": toPayload(rt),
	})
}

func (s *Server) handleRouteMulti(w http.ResponseWriter, r *http.Request) {
	snapshot, origin, dest, err := s.endpoints(r)
	if err != nil {
		if errors.Is(err, errBadCoordinates) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		writeError(w, err)
		return
	}

	routes, err := route.Multi(snapshot, origin.Node, dest.Node, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	payloads := make([]routePayload, len(routes))
	for i, rt := range routes {
		payloads[i] = toPayload(rt)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":                snapshot.Mode,
		"snapped_origin":      snappedPoint{Lat: origin.Point.Lat(), Lon: origin.Point.Lon()},
		"snapped_destination": snappedPoint{Lat: dest.Point.Lat(), Lon: dest.Point.Lon()},
		"snap_dist_m": map[string]float64{
			"origin":      origin.OffsetM,
			"destination": dest.OffsetM,
		},
		"routes": payloads,
	})
}

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	if s.hazards == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "hazard store is not configured"})
		return
	}

	var bbox *hazard.BBox
	q := r.URL.Query()
	if q.Get("west") != "" || q.Get("south") != "" || q.Get("east") != "" || q.Get("north") != "" {
		west, err1 := strconv.ParseFloat(q.Get("west"), 64)
		south, err2 := strconv.ParseFloat(q.Get("south"), 64)
		east, err3 := strconv.ParseFloat(q.Get("east"), 64)
		north, err4 := strconv.ParseFloat(q.Get("north"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bbox needs west, south, east, north"})
			return
		}
		bbox = &hazard.BBox{West: west, South: south, East: east, North: north}
	}

	obs, err := s.hazards.List(r.Context(), bbox)
	if err != nil {
		writeError(w, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, o := range obs {
		f := geojson.NewPointFeature([]float64{o.Lon, o.Lat})
		f.SetProperty("severity", o.Severity)
		fc.AddFeature(f)
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if s.rebuild == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "rebuild is not configured"})
		return
	}
	modes := s.manager.Modes()
	if m := r.URL.Query().Get("mode"); m != "" {
		modes = []string{m}
	}
	rebuilt := make([]string, 0, len(modes))
	for _, mode := range modes {
		if err := s.rebuild(r.Context(), mode); err != nil {
			// previous snapshot for this mode stays in service
			writeError(w, err)
			return
		}
		rebuilt = append(rebuilt, mode)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "rebuilt", "modes": rebuilt})
}
