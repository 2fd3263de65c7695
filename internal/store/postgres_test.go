package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresRecordLookup(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO lookups`).
		WithArgs(pgxmock.AnyArg(), "BRG-6205", nil, "ai", "complete", false, pgxmock.AnyArg(), nil, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec, err := s.RecordLookup(context.Background(), model.Lookup{
		Code:    "BRG-6205",
		Source:  model.SourceAI,
		Status:  model.LookupStatusComplete,
		Profile: testProfile("BRG-6205"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLookupNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, code, batch_id, source, status, cached, profile, error, created_at`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLookup(context.Background(), "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get lookup")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLookups(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "code", "batch_id", "source", "status", "cached", "profile", "error", "created_at"}).
		AddRow("id-1", "BRG-6205", (*string)(nil), "ai", "complete", false, []byte(`{"code":"BRG-6205","source":"ai"}`), (*string)(nil), now).
		AddRow("id-2", "GS-BOLT-24", strPtr("batch-1"), "mock", "complete", true, []byte(nil), (*string)(nil), now)

	mock.ExpectQuery(`SELECT id, code, batch_id, source, status, cached, profile, error, created_at`).
		WithArgs("mock", 50).
		WillReturnRows(rows)

	got, err := s.ListLookups(context.Background(), LookupFilter{Source: model.SourceMock, Limit: 50})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].ID)
	require.NotNil(t, got[0].Profile)
	assert.Equal(t, "BRG-6205", got[0].Profile.Code)
	assert.Nil(t, got[1].Profile)
	assert.Equal(t, "batch-1", got[1].BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCachedProfileMiss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT profile FROM profile_cache`).
		WithArgs("VLV.DN100").
		WillReturnError(pgx.ErrNoRows)

	p, err := s.GetCachedProfile(context.Background(), "VLV.DN100")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetCachedProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO profile_cache`).
		WithArgs(pgxmock.AnyArg(), "BRG-6205", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetCachedProfile(context.Background(), testProfile("BRG-6205"), time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordLookupBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"lookups"},
		[]string{"id", "code", "batch_id", "source", "status", "cached", "profile", "error", "created_at"}).
		WillReturnResult(2)

	recs, err := s.RecordLookupBatch(context.Background(), []model.Lookup{
		{Code: "A1", BatchID: "batch-3", Source: model.SourceMock, Status: model.LookupStatusComplete},
		{Code: "B2", BatchID: "batch-3", Source: model.SourceMock, Status: model.LookupStatusComplete},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.NotEmpty(t, recs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteExpiredProfiles(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM profile_cache`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.DeleteExpiredProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
