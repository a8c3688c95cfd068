package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/safemap/saferoute/internal/network"
	"github.com/safemap/saferoute/internal/route"
	"github.com/safemap/saferoute/internal/snap"
)

var (
	routeMode    string
	routeProfile string
	routeFrom    string
	routeTo      string
	routeGeoJSON bool
	routeAll     bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a route between two coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		origLat, origLon, err := parseLatLon(routeFrom)
		if err != nil {
			return eris.Wrap(err, "parse --from")
		}
		destLat, destLon, err := parseLatLon(routeTo)
		if err != nil {
			return eris.Wrap(err, "parse --to")
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Manager.Snapshot(routeMode)
		if err != nil {
			return err
		}

		orig, err := snap.Nearest(s, origLon, origLat)
		if err != nil {
			return eris.Wrap(err, "snap origin")
		}
		dest, err := snap.Nearest(s, destLon, destLat)
		if err != nil {
			return eris.Wrap(err, "snap destination")
		}

		var routes []*route.Route
		if routeAll {
			routes, err = route.Multi(s, orig.Node, dest.Node, nil)
		} else {
			var r *route.Route
			r, err = onePath(s, orig.Node, dest.Node)
			routes = []*route.Route{r}
		}
		if err != nil {
			return err
		}

		if routeGeoJSON {
			fc := routes[0].GeoJSON()
			if routeAll {
				for _, r := range routes[1:] {
					fc.Features = append(fc.Features, r.GeoJSON().Features...)
				}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(fc)
		}

		for _, r := range routes {
			fmt.Println(routeSummary(r))
		}
		return nil
	},
}

func routeSummary(r *route.Route) string {
	return fmt.Sprintf("profile=%s length=%.1fm mean_risk=%.3f weight=%.1f detour=%.1fm",
		r.Profile.Tag, r.Stats.LengthM, r.Stats.MeanRisk, r.Stats.TotalWeight, r.Stats.DetourM)
}

func onePath(s *network.Snapshot, orig, dest network.NodeID) (*route.Route, error) {
	path, err := route.Shortest(s, orig, dest, routeProfile)
	if err != nil {
		return nil, err
	}
	return route.Reconstruct(s, path, routeProfile)
}

func parseLatLon(v string) (lat, lon float64, err error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, eris.Errorf("want lat,lon, got %q", v)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "latitude")
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "longitude")
	}
	return lat, lon, nil
}

func init() {
	routeCmd.Flags().StringVar(&routeMode, "mode", "walk", "travel mode")
	routeCmd.Flags().StringVar(&routeProfile, "profile", "b03", "routing profile tag")
	routeCmd.Flags().StringVar(&routeFrom, "from", "", "origin as lat,lon")
	routeCmd.Flags().StringVar(&routeTo, "to", "", "destination as lat,lon")
	routeCmd.Flags().BoolVar(&routeGeoJSON, "geojson", false, "print route as GeoJSON")
	routeCmd.Flags().BoolVar(&routeAll, "all-profiles", false, "compute routes for every profile")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}
