package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimberlite-group/matprofile/internal/config"
	"github.com/kimberlite-group/matprofile/internal/model"
	"github.com/kimberlite-group/matprofile/internal/profile"
	"github.com/kimberlite-group/matprofile/internal/store"
)

// newTestServer wires a full stack on an in-memory store with AI disabled,
// so every profile comes from the deterministic mock generator.
func newTestServer(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		Anthropic: config.AnthropicConfig{Disabled: true},
		Store:     config.StoreConfig{CacheTTLHours: 24},
		Bulk:      config.BulkConfig{MaxConcurrency: 3, MaxCodes: 10},
		Profile:   config.ProfileConfig{Currency: "USD"},
		Retry:     config.RetryConfig{MaxAttempts: 1},
		Circuit:   config.CircuitConfig{FailureThreshold: 3, ResetTimeoutSecs: 30},
	}
	svc := profile.New(nil, st, cfg)

	return New(svc, st, cfg).Router(nil), st
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLookup(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/lookup", `{"code":"brg 6205"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var lookup model.Lookup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lookup))
	assert.Equal(t, "BRG-6205", lookup.Code)
	assert.Equal(t, model.SourceMock, lookup.Source)
	assert.Equal(t, model.LookupStatusComplete, lookup.Status)
	require.NotNil(t, lookup.Profile)
	assert.NotEmpty(t, lookup.ID)
}

func TestLookupBadRequests(t *testing.T) {
	handler, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"code":`, want: http.StatusBadRequest},
		{name: "missing code", body: `{}`, want: http.StatusBadRequest},
		{name: "blank code", body: `{"code":"   "}`, want: http.StatusBadRequest},
		{name: "invalid code", body: `{"code":"???"}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/lookup", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestBulkJSON(t *testing.T) {
	handler, st := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/bulk", `{"codes":["BRG-6205","GS-BOLT-24"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp bulkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "BRG-6205", resp.Results[0].Code)
	assert.Equal(t, "GS-BOLT-24", resp.Results[1].Code)

	stored, err := st.ListLookups(context.Background(), store.LookupFilter{BatchID: resp.BatchID})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestBulkJSONTooMany(t *testing.T) {
	handler, _ := newTestServer(t)

	codes := make([]string, 11)
	for i := range codes {
		codes[i] = "C-" + strings.Repeat("X", i+1)
	}
	body, _ := json.Marshal(map[string]any{"codes": codes})

	rec := doJSON(t, handler, http.MethodPost, "/api/bulk", string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBulkMultipart(t *testing.T) {
	handler, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "codes.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("material_code\nBRG-6205\nPMP-SLURRY-001\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp bulkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "PMP-SLURRY-001", resp.Results[1].Code)
}

func TestBulkMultipartEmptyFile(t *testing.T) {
	handler, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_, err := mw.CreateFormFile("file", "codes.csv")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHistory(t *testing.T) {
	handler, _ := newTestServer(t)

	require.Equal(t, http.StatusOK, doJSON(t, handler, http.MethodPost, "/api/lookup", `{"code":"BRG-6205"}`).Code)
	require.Equal(t, http.StatusOK, doJSON(t, handler, http.MethodPost, "/api/lookup", `{"code":"GS-BOLT-24"}`).Code)

	rec := doJSON(t, handler, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Lookups []model.Lookup `json:"lookups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Lookups, 2)

	rec = doJSON(t, handler, http.MethodGet, "/api/history?code=BRG-6205", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lookups, 1)
	assert.Equal(t, "BRG-6205", resp.Lookups[0].Code)
}

func TestHistoryEmpty(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lookups":[]}`, rec.Body.String())
}

func TestHistoryInvalidLimit(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileNotFound(t *testing.T) {
	handler, _ := newTestServer(t)

	// Mock profiles are not cached, so even a completed lookup leaves
	// the profile endpoint empty.
	require.Equal(t, http.StatusOK, doJSON(t, handler, http.MethodPost, "/api/lookup", `{"code":"BRG-6205"}`).Code)

	rec := doJSON(t, handler, http.MethodGet, "/api/profiles/BRG-6205", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfileCached(t *testing.T) {
	handler, st := newTestServer(t)

	p := &model.MaterialProfile{Code: "BRG-6205", Source: model.SourceAI, Obsolescence: model.ObsolescenceRisk{Level: model.RiskLow}}
	require.NoError(t, st.SetCachedProfile(context.Background(), p, time.Minute))

	rec := doJSON(t, handler, http.MethodGet, "/api/profiles/BRG-6205", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.MaterialProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "BRG-6205", got.Code)
}
