package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
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
CREATE TABLE IF NOT EXISTS lookups (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	batch_id   TEXT,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	cached     INTEGER NOT NULL DEFAULT 0,
	profile    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profile_cache (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	profile    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookups_code ON lookups(code);
CREATE INDEX IF NOT EXISTS idx_lookups_source ON lookups(source);
CREATE INDEX IF NOT EXISTS idx_lookups_batch_id ON lookups(batch_id);
CREATE INDEX IF NOT EXISTS idx_lookups_created_at ON lookups(created_at);
CREATE INDEX IF NOT EXISTS idx_profile_cache_code ON profile_cache(code);
CREATE INDEX IF NOT EXISTS idx_profile_cache_expires_at ON profile_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordLookup(ctx context.Context, lookup model.Lookup) (*model.Lookup, error) {
	lookup.ID = uuid.New().String()
	lookup.CreatedAt = time.Now().UTC()

	var profileJSON sql.NullString
	if lookup.Profile != nil {
		b, err := json.Marshal(lookup.Profile)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal profile")
		}
		profileJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lookups (id, code, batch_id, source, status, cached, profile, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lookup.ID, lookup.Code, nullString(lookup.BatchID), string(lookup.Source),
		string(lookup.Status), lookup.Cached, profileJSON, nullString(lookup.Error), lookup.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert lookup %s", lookup.Code)
	}

	return &lookup, nil
}

// RecordLookupBatch inserts all lookups in one transaction. IDs and
// timestamps are assigned here, like RecordLookup.
func (s *SQLiteStore) RecordLookupBatch(ctx context.Context, lookups []model.Lookup) ([]model.Lookup, error) {
	if len(lookups) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin batch")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lookups (id, code, batch_id, source, status, cached, profile, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare batch insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	out := make([]model.Lookup, len(lookups))
	for i, lookup := range lookups {
		lookup.ID = uuid.New().String()
		lookup.CreatedAt = now

		var profileJSON sql.NullString
		if lookup.Profile != nil {
			b, err := json.Marshal(lookup.Profile)
			if err != nil {
				return nil, eris.Wrap(err, "sqlite: marshal profile")
			}
			profileJSON = sql.NullString{String: string(b), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			lookup.ID, lookup.Code, nullString(lookup.BatchID), string(lookup.Source),
			string(lookup.Status), lookup.Cached, profileJSON, nullString(lookup.Error), lookup.CreatedAt,
		); err != nil {
			return nil, eris.Wrapf(err, "sqlite: batch insert lookup %s", lookup.Code)
		}
		out[i] = lookup
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit batch")
	}
	return out, nil
}

func (s *SQLiteStore) GetLookup(ctx context.Context, id string) (*model.Lookup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, batch_id, source, status, cached, profile, error, created_at
		 FROM lookups WHERE id = ?`,
		id,
	)
	return scanLookup(row)
}

func (s *SQLiteStore) ListLookups(ctx context.Context, filter LookupFilter) ([]model.Lookup, error) {
	query := `SELECT id, code, batch_id, source, status, cached, profile, error, created_at
		 FROM lookups WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.Code != "" {
		query += ` AND code = ?`
		args = append(args, filter.Code)
	}
	if filter.BatchID != "" {
		query += ` AND batch_id = ?`
		args = append(args, filter.BatchID)
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list lookups")
	}
	defer rows.Close()

	var lookups []model.Lookup
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, *l)
	}
	return lookups, eris.Wrap(rows.Err(), "sqlite: list lookups iterate")
}

func (s *SQLiteStore) GetCachedProfile(ctx context.Context, code string) (*model.MaterialProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT profile FROM profile_cache
		 WHERE code = ? AND expires_at > ?
		 ORDER BY cached_at DESC LIMIT 1`,
		code, time.Now().UTC(),
	)

	var profileJSON string
	err := row.Scan(&profileJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached profile")
	}

	var p model.MaterialProfile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached profile")
	}
	return &p, nil
}

func (s *SQLiteStore) SetCachedProfile(ctx context.Context, profile *model.MaterialProfile, ttl time.Duration) error {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profile_cache (id, code, profile, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		id, profile.Code, string(profileJSON), now, expiresAt,
	)
	return eris.Wrap(err, "sqlite: set cached profile")
}

func (s *SQLiteStore) DeleteExpiredProfiles(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM profile_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired profiles")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLookup(row scannable) (*model.Lookup, error) {
	var l model.Lookup
	var batchID, profileJSON, errMsg sql.NullString

	err := row.Scan(&l.ID, &l.Code, &batchID, &l.Source, &l.Status, &l.Cached, &profileJSON, &errMsg, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("lookup not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lookup")
	}

	l.BatchID = batchID.String
	l.Error = errMsg.String
	if profileJSON.Valid {
		l.Profile = &model.MaterialProfile{}
		if err := json.Unmarshal([]byte(profileJSON.String), l.Profile); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
	}
	return &l, nil
}
