package hazard

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/safemap/saferoute/internal/db"
)

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres wraps an existing pool. closeFn may be nil when the caller
// owns the pool lifecycle.
func NewPostgres(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: closeFn}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS hazards (
	id         TEXT PRIMARY KEY,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	severity   DOUBLE PRECISION NOT NULL,
	seq        BIGSERIAL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_hazards_lat_lon ON hazards(lat, lon)`

// Migrate implements Store.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate hazards")
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Insert implements Store.
func (s *PostgresStore) Insert(ctx context.Context, obs []Observation) (int64, error) {
	var n int64
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			return n, err
		}
		id := o.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO hazards (id, lat, lon, severity) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			id, o.Lat, o.Lon, o.Severity,
		)
		if err != nil {
			return n, eris.Wrap(err, "postgres: insert hazard")
		}
		n++
	}
	return n, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, bbox *BBox) ([]Observation, error) {
	query := `SELECT id, lat, lon, severity FROM hazards`
	var args []any
	if bbox != nil {
		query += ` WHERE lon >= $1 AND lon <= $2 AND lat >= $3 AND lat <= $4`
		args = append(args, bbox.West, bbox.East, bbox.South, bbox.North)
	}
	query += ` ORDER BY seq`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list hazards")
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.Lat, &o.Lon, &o.Severity); err != nil {
			return nil, eris.Wrap(err, "postgres: scan hazard")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate hazards")
	}
	return out, nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hazards`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count hazards")
	}
	return n, nil
}
