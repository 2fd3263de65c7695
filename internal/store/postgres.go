package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kimberlite-group/matprofile/internal/config"
	"github.com/kimberlite-group/matprofile/internal/db"
	"github.com/kimberlite-group/matprofile/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_lookup": `INSERT INTO lookups (id, code, batch_id, source, status, cached, profile, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_lookup": `SELECT id, code, batch_id, source, status, cached, profile, error, created_at
		FROM lookups WHERE id = $1`,
	"get_cached_profile": `SELECT profile FROM profile_cache
		WHERE code = $1 AND expires_at > now() ORDER BY cached_at DESC LIMIT 1`,
	"set_cached_profile": `INSERT INTO profile_cache (id, code, profile, cached_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET profile = EXCLUDED.profile,
			cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
	"delete_expired_profiles": `DELETE FROM profile_cache WHERE expires_at <= now()`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg.MaxConns > 0 {
		maxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		minConns = poolCfg.MinConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS lookups (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	batch_id   TEXT,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	cached     BOOLEAN NOT NULL DEFAULT FALSE,
	profile    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profile_cache (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	profile    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lookups_code ON lookups(code);
CREATE INDEX IF NOT EXISTS idx_lookups_source ON lookups(source);
CREATE INDEX IF NOT EXISTS idx_lookups_batch_id ON lookups(batch_id);
CREATE INDEX IF NOT EXISTS idx_lookups_created_at ON lookups(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_profile_cache_expires_at ON profile_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RecordLookup(ctx context.Context, lookup model.Lookup) (*model.Lookup, error) {
	lookup.ID = uuid.New().String()
	lookup.CreatedAt = time.Now().UTC()

	profileJSON, err := marshalProfile(lookup.Profile)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO lookups (id, code, batch_id, source, status, cached, profile, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lookup.ID, lookup.Code, textOrNil(lookup.BatchID), string(lookup.Source),
		string(lookup.Status), lookup.Cached, profileJSON, textOrNil(lookup.Error), lookup.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert lookup %s", lookup.Code)
	}
	return &lookup, nil
}

// RecordLookupBatch writes all lookups through the COPY protocol.
func (s *PostgresStore) RecordLookupBatch(ctx context.Context, lookups []model.Lookup) ([]model.Lookup, error) {
	if len(lookups) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	out := make([]model.Lookup, len(lookups))
	rows := make([][]any, len(lookups))
	for i, lookup := range lookups {
		lookup.ID = uuid.New().String()
		lookup.CreatedAt = now

		profileJSON, err := marshalProfile(lookup.Profile)
		if err != nil {
			return nil, err
		}

		rows[i] = []any{
			lookup.ID, lookup.Code, textOrNil(lookup.BatchID), string(lookup.Source),
			string(lookup.Status), lookup.Cached, profileJSON, textOrNil(lookup.Error), lookup.CreatedAt,
		}
		out[i] = lookup
	}

	columns := []string{"id", "code", "batch_id", "source", "status", "cached", "profile", "error", "created_at"}
	if _, err := db.CopyFrom(ctx, s.pool, "lookups", columns, rows); err != nil {
		return nil, eris.Wrap(err, "postgres: batch insert lookups")
	}
	return out, nil
}

func (s *PostgresStore) GetLookup(ctx context.Context, id string) (*model.Lookup, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, code, batch_id, source, status, cached, profile, error, created_at
		FROM lookups WHERE id = $1`,
		id,
	)
	l, err := scanPgLookup(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lookup %s", id)
	}
	return l, nil
}

func (s *PostgresStore) ListLookups(ctx context.Context, filter LookupFilter) ([]model.Lookup, error) {
	query := `SELECT id, code, batch_id, source, status, cached, profile, error, created_at
		FROM lookups WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Source != "" {
		query += ` AND source = ` + arg(string(filter.Source))
	}
	if filter.Code != "" {
		query += ` AND code = ` + arg(filter.Code)
	}
	if filter.BatchID != "" {
		query += ` AND batch_id = ` + arg(filter.BatchID)
	}
	query += ` ORDER BY created_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list lookups")
	}
	defer rows.Close()

	var lookups []model.Lookup
	for rows.Next() {
		l, err := scanPgLookup(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lookup")
		}
		lookups = append(lookups, *l)
	}
	return lookups, eris.Wrap(rows.Err(), "postgres: list lookups iterate")
}

func (s *PostgresStore) GetCachedProfile(ctx context.Context, code string) (*model.MaterialProfile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT profile FROM profile_cache
		WHERE code = $1 AND expires_at > now() ORDER BY cached_at DESC LIMIT 1`,
		code,
	)

	var profileJSON []byte
	err := row.Scan(&profileJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached profile")
	}

	var p model.MaterialProfile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached profile")
	}
	return &p, nil
}

func (s *PostgresStore) SetCachedProfile(ctx context.Context, profile *model.MaterialProfile, ttl time.Duration) error {
	now := time.Now().UTC()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profile_cache (id, code, profile, cached_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET profile = EXCLUDED.profile,
			cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		uuid.New().String(), profile.Code, profileJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached profile")
}

func (s *PostgresStore) DeleteExpiredProfiles(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profile_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired profiles")
	}
	return int(tag.RowsAffected()), nil
}

// helpers

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalProfile(p *model.MaterialProfile) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal profile")
	}
	return b, nil
}

func scanPgLookup(row pgx.Row) (*model.Lookup, error) {
	var l model.Lookup
	var batchID, errMsg *string
	var profileJSON []byte

	if err := row.Scan(&l.ID, &l.Code, &batchID, &l.Source, &l.Status, &l.Cached, &profileJSON, &errMsg, &l.CreatedAt); err != nil {
		return nil, err
	}

	if batchID != nil {
		l.BatchID = *batchID
	}
	if errMsg != nil {
		l.Error = *errMsg
	}
	if len(profileJSON) > 0 {
		l.Profile = &model.MaterialProfile{}
		if err := json.Unmarshal(profileJSON, l.Profile); err != nil {
			return nil, err
		}
	}
	return &l, nil
}
