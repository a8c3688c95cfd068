package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safemap/saferoute/internal/hazard"
	"github.com/safemap/saferoute/internal/network"
)

// engineEnv holds the hazard store and the per-mode snapshot manager used by
// the serve/route/snapshot commands.
type engineEnv struct {
	Store   hazard.Store
	Manager *network.Manager
}

// Close releases resources held by the engine environment.
func (e *engineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the hazard store selected by config (sqlite by default,
// postgres when a database URL is configured).
func initStore(ctx context.Context) (hazard.Store, error) {
	switch cfg.Hazards.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Hazards.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "connect postgres")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, eris.Wrap(err, "ping postgres")
		}
		zap.L().Info("hazard store ready", zap.String("driver", "postgres"))
		return hazard.NewPostgres(pool, pool.Close), nil
	case "", "sqlite":
		st, err := hazard.NewSQLite(cfg.Hazards.Path)
		if err != nil {
			return nil, err
		}
		zap.L().Info("hazard store ready",
			zap.String("driver", "sqlite"),
			zap.String("path", cfg.Hazards.Path),
		)
		return st, nil
	default:
		return nil, eris.Errorf("unknown hazards driver %q", cfg.Hazards.Driver)
	}
}

// networkPath returns the data file for one travel mode, e.g.
// data/networks/walk.geojson.
func networkPath(mode string) string {
	ext := ".geojson"
	if cfg.Network.Format == "shapefile" {
		ext = ".shp"
	}
	return filepath.Join(cfg.Network.DataDir, mode+ext)
}

func loadBase(mode string) (*network.Base, error) {
	path := networkPath(mode)
	if cfg.Network.Format == "shapefile" {
		return network.LoadShapefile(path)
	}
	return network.LoadGeoJSONFile(path)
}

// snapshotBuilder returns the BuildFunc the manager uses for initial builds
// and for rebuilds triggered over HTTP. Every call re-reads the hazard store
// so new observations take effect.
func snapshotBuilder(st hazard.Store) network.BuildFunc {
	params := network.BuildParams{
		RadiusM:         cfg.Risk.RadiusM,
		DecayM:          cfg.Risk.DecayM,
		EdgeAggregation: cfg.Risk.EdgeAggregation,
	}
	return func(ctx context.Context, mode string) (*network.Snapshot, error) {
		base, err := loadBase(mode)
		if err != nil {
			return nil, err
		}
		obs, err := st.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		return network.Build(mode, base, obs, cfg.Profiles, params)
	}
}

// seedHazards imports the configured CSV into an empty store. A store that
// already holds observations is left untouched.
func seedHazards(ctx context.Context, st hazard.Store) error {
	if cfg.Hazards.CSVPath == "" {
		return nil
	}
	n, err := st.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	f, err := os.Open(cfg.Hazards.CSVPath)
	if err != nil {
		return eris.Wrap(err, "open hazard seed csv")
	}
	defer f.Close()

	obs, err := hazard.ReadCSV(f)
	if err != nil {
		return err
	}
	inserted, err := st.Insert(ctx, obs)
	if err != nil {
		return err
	}
	zap.L().Info("seeded hazard store",
		zap.String("csv", cfg.Hazards.CSVPath),
		zap.Int64("inserted", inserted),
	)
	return nil
}

// initEngine opens the hazard store and builds the initial snapshot for every
// configured mode. Callers should defer env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate hazard store")
	}
	if err := seedHazards(ctx, st); err != nil {
		_ = st.Close()
		return nil, err
	}

	mgr := network.NewManager(cfg.Network.Modes)
	build := snapshotBuilder(st)

	g, gctx := errgroup.WithContext(ctx)
	for _, mode := range cfg.Network.Modes {
		g.Go(func() error {
			if err := mgr.Rebuild(gctx, mode, build); err != nil {
				return fmt.Errorf("build %s snapshot: %w", mode, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = st.Close()
		return nil, err
	}

	return &engineEnv{Store: st, Manager: mgr}, nil
}
