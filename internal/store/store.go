// Package store persists lookup history and cached profiles behind a driver
// agnostic interface.
package store

import (
	"context"
	"time"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// LookupFilter specifies criteria for listing lookup history.
type LookupFilter struct {
	Source  model.Source `json:"source,omitempty"`
	Code    string       `json:"code,omitempty"`
	BatchID string       `json:"batch_id,omitempty"`
	Limit   int          `json:"limit,omitempty"`
	Offset  int          `json:"offset,omitempty"`
}

// Store defines the persistence interface for the profiler.
type Store interface {
	// History
	RecordLookup(ctx context.Context, lookup model.Lookup) (*model.Lookup, error)
	RecordLookupBatch(ctx context.Context, lookups []model.Lookup) ([]model.Lookup, error)
	GetLookup(ctx context.Context, id string) (*model.Lookup, error)
	ListLookups(ctx context.Context, filter LookupFilter) ([]model.Lookup, error)

	// Profile cache
	GetCachedProfile(ctx context.Context, code string) (*model.MaterialProfile, error)
	SetCachedProfile(ctx context.Context, profile *model.MaterialProfile, ttl time.Duration) error
	DeleteExpiredProfiles(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
