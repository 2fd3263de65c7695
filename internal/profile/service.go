// Package profile generates material profiles, preferring the Anthropic API
// and falling back to deterministic mock data when the API is unavailable.
package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kimberlite-group/matprofile/internal/config"
	"github.com/kimberlite-group/matprofile/internal/model"
	"github.com/kimberlite-group/matprofile/internal/profile/mockdata"
	"github.com/kimberlite-group/matprofile/internal/resilience"
	"github.com/kimberlite-group/matprofile/internal/store"
	"github.com/kimberlite-group/matprofile/pkg/anthropic"
)

// Service resolves material codes to profiles and records lookup history.
type Service struct {
	client  anthropic.Client
	store   store.Store
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig

	model      string
	maxTokens  int64
	disabled   bool
	currency   string
	cacheTTL   time.Duration
	maxWorkers int
}

// New builds a Service. A nil client forces mock generation for every lookup.
func New(client anthropic.Client, st store.Store, cfg *config.Config) *Service {
	breakerCfg := resilience.FromCircuitConfig(cfg.Circuit)
	breakerCfg.OnStateChange = resilience.LogStateChanges("anthropic")

	return &Service{
		client:     client,
		store:      st,
		breaker:    resilience.NewCircuitBreaker(breakerCfg),
		retry:      resilience.FromRetryConfig(cfg.Retry),
		model:      cfg.Anthropic.Model,
		maxTokens:  cfg.Anthropic.MaxTokens,
		disabled:   cfg.Anthropic.Disabled || client == nil,
		currency:   cfg.Profile.Currency,
		cacheTTL:   time.Duration(cfg.Store.CacheTTLHours) * time.Hour,
		maxWorkers: cfg.Bulk.MaxConcurrency,
	}
}

// Generate profiles a single material code and records the lookup. The raw
// code is normalized first; a code that cannot be normalized is an error.
// Generation itself always succeeds: if the AI path fails for any reason the
// profile downgrades to mock data and the failure is noted on the lookup.
func (s *Service) Generate(ctx context.Context, rawCode string) (*model.Lookup, error) {
	code, err := model.NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}

	lookup := s.profileCode(ctx, code)

	rec, err := s.store.RecordLookup(ctx, lookup)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: record lookup %s", code)
	}
	return rec, nil
}

// GenerateBulk profiles every code in order, fanning out across workers, and
// records the whole run as one batch. Codes that fail normalization become
// failed history entries rather than aborting the batch. Results come back in
// input order.
func (s *Service) GenerateBulk(ctx context.Context, rawCodes []string) (string, []model.Lookup, error) {
	if len(rawCodes) == 0 {
		return "", nil, eris.New("profile: no codes to process")
	}

	batchID := uuid.New().String()
	results := make([]model.Lookup, len(rawCodes))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.maxWorkers
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, raw := range rawCodes {
		g.Go(func() error {
			code, err := model.NormalizeCode(raw)
			if err != nil {
				results[i] = model.Lookup{
					Code:    raw,
					BatchID: batchID,
					Source:  model.SourceMock,
					Status:  model.LookupStatusFailed,
					Error:   err.Error(),
				}
				return nil
			}

			lookup := s.profileCode(gctx, code)
			lookup.BatchID = batchID
			results[i] = lookup
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", nil, eris.Wrap(err, "profile: bulk generation")
	}

	recs, err := s.store.RecordLookupBatch(ctx, results)
	if err != nil {
		return "", nil, eris.Wrap(err, "profile: record batch")
	}

	zap.L().Info("bulk profiling complete",
		zap.String("batch_id", batchID),
		zap.Int("codes", len(rawCodes)))
	return batchID, recs, nil
}

// profileCode produces a complete Lookup for a normalized code, consulting
// the cache, then the AI, then mock data. It never fails.
func (s *Service) profileCode(ctx context.Context, code string) model.Lookup {
	lookup := model.Lookup{
		Code:   code,
		Status: model.LookupStatusComplete,
	}

	if cached, err := s.store.GetCachedProfile(ctx, code); err != nil {
		zap.L().Warn("profile cache read failed",
			zap.String("code", code), zap.Error(err))
	} else if cached != nil {
		lookup.Profile = cached
		lookup.Source = cached.Source
		lookup.Cached = true
		return lookup
	}

	if !s.disabled {
		p, err := s.generateAI(ctx, code)
		if err == nil {
			lookup.Profile = p
			lookup.Source = model.SourceAI
			s.cacheProfile(ctx, p)
			return lookup
		}
		lookup.Error = err.Error()
		zap.L().Warn("AI generation failed, using mock profile",
			zap.String("code", code), zap.Error(err))
	}

	lookup.Profile = mockdata.Generate(code, s.currency)
	lookup.Source = model.SourceMock
	return lookup
}

// generateAI calls the Anthropic API behind the circuit breaker, retrying
// transient failures. A breaker-open error is not transient, so retries stop
// immediately once the endpoint is known to be down.
func (s *Service) generateAI(ctx context.Context, code string) (*model.MaterialProfile, error) {
	retryCfg := s.retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return s.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     s.model,
				MaxTokens: s.maxTokens,
				System:    anthropic.BuildCachedSystemBlocks(systemText),
				Messages: []anthropic.Message{
					{Role: "user", Content: buildUserPrompt(code)},
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(s.model, "profile")
	return parseProfile(resp.Text(), code, s.currency)
}

func (s *Service) cacheProfile(ctx context.Context, p *model.MaterialProfile) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.store.SetCachedProfile(ctx, p, s.cacheTTL); err != nil {
		zap.L().Warn("profile cache write failed",
			zap.String("code", p.Code), zap.Error(err))
	}
}
