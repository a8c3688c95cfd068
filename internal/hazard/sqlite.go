package hazard

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hazards (
	id         TEXT PRIMARY KEY,
	lat        REAL NOT NULL,
	lon        REAL NOT NULL,
	severity   REAL NOT NULL,
	seq        INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_hazards_seq ON hazards(seq);
CREATE INDEX IF NOT EXISTS idx_hazards_lat_lon ON hazards(lat, lon);
`

// Migrate implements Store.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert implements Store. The whole batch is written in one transaction;
// any invalid observation aborts the batch.
func (s *SQLiteStore) Insert(ctx context.Context, obs []Observation) (int64, error) {
	if len(obs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM hazards`).Scan(&seq); err != nil {
		return 0, eris.Wrap(err, "sqlite: read max seq")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO hazards (id, lat, lon, severity, seq) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			return 0, err
		}
		id := o.ID
		if id == "" {
			id = uuid.NewString()
		}
		seq++
		if _, err := stmt.ExecContext(ctx, id, o.Lat, o.Lon, o.Severity, seq); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert hazard")
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return n, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, bbox *BBox) ([]Observation, error) {
	query := `SELECT id, lat, lon, severity FROM hazards`
	var args []any
	if bbox != nil {
		query += ` WHERE lon >= ? AND lon <= ? AND lat >= ? AND lat <= ?`
		args = append(args, bbox.West, bbox.East, bbox.South, bbox.North)
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list hazards")
	}
	defer rows.Close() //nolint:errcheck

	var out []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.Lat, &o.Lon, &o.Severity); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan hazard")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate hazards")
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hazards`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count hazards")
	}
	return n, nil
}
