package profile

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kimberlite-group/matprofile/internal/config"
	"github.com/kimberlite-group/matprofile/internal/model"
	"github.com/kimberlite-group/matprofile/internal/resilience"
	"github.com/kimberlite-group/matprofile/internal/store"
	"github.com/kimberlite-group/matprofile/pkg/anthropic"
	"github.com/kimberlite-group/matprofile/pkg/anthropic/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 2048,
		},
		Store:   config.StoreConfig{CacheTTLHours: 24},
		Bulk:    config.BulkConfig{MaxConcurrency: 3, MaxCodes: 500},
		Profile: config.ProfileConfig{Currency: "USD"},
		Retry:   config.RetryConfig{MaxAttempts: 1},
		Circuit: config.CircuitConfig{FailureThreshold: 3, ResetTimeoutSecs: 30},
	}
}

func newTestService(t *testing.T, client anthropic.Client) (*Service, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	return New(client, st, testConfig()), st
}

func textResponse(body string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: body}},
		StopReason: "end_turn",
	}
}

func TestGenerateAISuccess(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 && req.MaxTokens == 2048
	})).Return(textResponse(sampleResponse), nil).Once()

	svc, _ := newTestService(t, client)

	lookup, err := svc.Generate(context.Background(), "brg 6205")
	require.NoError(t, err)
	assert.Equal(t, "BRG-6205", lookup.Code)
	assert.Equal(t, model.SourceAI, lookup.Source)
	assert.Equal(t, model.LookupStatusComplete, lookup.Status)
	assert.False(t, lookup.Cached)
	assert.Empty(t, lookup.Error)
	require.NotNil(t, lookup.Profile)
	assert.Equal(t, "Bearings", lookup.Profile.Category)
}

func TestGenerateCacheHit(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(sampleResponse), nil).Once()

	svc, _ := newTestService(t, client)

	first, err := svc.Generate(context.Background(), "BRG-6205")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// Second lookup must come from cache without another API call.
	second, err := svc.Generate(context.Background(), "BRG-6205")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, model.SourceAI, second.Source)
}

func TestGenerateFallsBackOnTransportError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("connection refused"))

	svc, _ := newTestService(t, client)

	lookup, err := svc.Generate(context.Background(), "PMP-SLURRY-001")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, lookup.Source)
	assert.Equal(t, model.LookupStatusComplete, lookup.Status)
	assert.NotEmpty(t, lookup.Error)
	require.NotNil(t, lookup.Profile)
	assert.Equal(t, model.SourceMock, lookup.Profile.Source)
	require.NoError(t, lookup.Profile.Validate())
}

func TestGenerateFallsBackOnMalformedResponse(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("I am sorry, I cannot help with that."), nil)

	svc, _ := newTestService(t, client)

	lookup, err := svc.Generate(context.Background(), "GS-BOLT-24")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, lookup.Source)
	assert.NotEmpty(t, lookup.Error)
}

func TestGenerateFallsBackWhenCircuitOpen(t *testing.T) {
	client := mocks.NewMockClient(t)
	svc, _ := newTestService(t, client)
	// Force the breaker open so the call never reaches the client.
	for range 3 {
		_ = svc.breaker.Execute(context.Background(), func(context.Context) error {
			return eris.New("boom")
		})
	}
	require.Equal(t, resilience.CircuitOpen, svc.breaker.State())

	lookup, err := svc.Generate(context.Background(), "CRSH-JAW-01")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, lookup.Source)
	client.AssertNotCalled(t, "CreateMessage")
}

func TestGenerateDisabledUsesMock(t *testing.T) {
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	cfg := testConfig()
	cfg.Anthropic.Disabled = true
	svc := New(mocks.NewMockClient(t), st, cfg)

	lookup, err := svc.Generate(context.Background(), "HYD-HOSE-25")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, lookup.Source)
	assert.Empty(t, lookup.Error)
}

func TestGenerateNilClientUsesMock(t *testing.T) {
	svc, _ := newTestService(t, nil)

	lookup, err := svc.Generate(context.Background(), "FLT-OIL-900")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, lookup.Source)
}

func TestGenerateRejectsInvalidCode(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Generate(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGenerateBulkPreservesOrder(t *testing.T) {
	svc, st := newTestService(t, nil)
	codes := []string{"AAA-1", "BBB-2", "CCC-3", "DDD-4", "EEE-5"}

	batchID, results, err := svc.GenerateBulk(context.Background(), codes)
	require.NoError(t, err)
	require.Len(t, results, len(codes))
	for i, code := range codes {
		assert.Equal(t, code, results[i].Code)
		assert.Equal(t, batchID, results[i].BatchID)
		assert.Equal(t, model.LookupStatusComplete, results[i].Status)
	}

	// Every result is persisted under the batch.
	stored, err := st.ListLookups(context.Background(), store.LookupFilter{BatchID: batchID})
	require.NoError(t, err)
	assert.Len(t, stored, len(codes))
}

func TestGenerateBulkInvalidCodeIsolated(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, results, err := svc.GenerateBulk(context.Background(), []string{"AAA-1", "???", "CCC-3"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, model.LookupStatusComplete, results[0].Status)
	assert.Equal(t, model.LookupStatusFailed, results[1].Status)
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].Profile)
	assert.Equal(t, model.LookupStatusComplete, results[2].Status)
}

func TestGenerateBulkEmpty(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, _, err := svc.GenerateBulk(context.Background(), nil)
	assert.Error(t, err)
}
