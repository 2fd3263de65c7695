package model

import "time"

// LookupStatus represents the outcome of a single profile lookup.
type LookupStatus string

const (
	LookupStatusComplete LookupStatus = "complete"
	LookupStatusFailed   LookupStatus = "failed"
)

// Lookup is one history entry: a material code that was profiled, how, and
// with what result. Bulk uploads produce one Lookup per code sharing a
// BatchID.
type Lookup struct {
	ID        string           `json:"id"`
	Code      string           `json:"code"`
	BatchID   string           `json:"batch_id,omitempty"`
	Source    Source           `json:"source"`
	Status    LookupStatus     `json:"status"`
	Cached    bool             `json:"cached"`
	Profile   *MaterialProfile `json:"profile,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
