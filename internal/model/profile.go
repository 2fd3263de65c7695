package model

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Source identifies what produced a profile.
type Source string

const (
	SourceAI   Source = "ai"
	SourceMock Source = "mock"
)

// RiskLevel bands obsolescence risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ObsolescenceRisk describes how likely a material is to become obsolete.
type ObsolescenceRisk struct {
	Level     RiskLevel `json:"level"`
	Score     float64   `json:"score"`
	Reasoning string    `json:"reasoning"`
}

// DuplicatePart is a candidate duplicate of the profiled material.
type DuplicatePart struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
	Reason      string  `json:"reason,omitempty"`
}

// MaterialProfile is the full profile returned for a material code.
// StockLevel, SafetyStock and AnnualUsage are whole units; UnitCost uses
// decimal to avoid float drift in money values.
type MaterialProfile struct {
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	UnitOfMeasure string           `json:"unit_of_measure"`
	StockLevel    int64            `json:"stock_level"`
	SafetyStock   int64            `json:"safety_stock"`
	AnnualUsage   int64            `json:"annual_usage"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	Currency      string           `json:"currency"`
	LeadTimeDays  int              `json:"lead_time_days"`
	ReorderPoint  int64            `json:"reorder_point"`
	EOQ           int64            `json:"eoq"`
	Obsolescence  ObsolescenceRisk `json:"obsolescence"`
	Duplicates    []DuplicatePart  `json:"duplicates"`
	Source        Source           `json:"source"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// Validate checks a profile for structural sanity. AI responses pass through
// this before being accepted; any violation downgrades the lookup to mock.
func (p *MaterialProfile) Validate() error {
	if p.Code == "" {
		return eris.New("profile: empty code")
	}
	if p.StockLevel < 0 {
		return eris.Errorf("profile %s: negative stock level %d", p.Code, p.StockLevel)
	}
	if p.SafetyStock < 0 {
		return eris.Errorf("profile %s: negative safety stock %d", p.Code, p.SafetyStock)
	}
	if p.AnnualUsage < 0 {
		return eris.Errorf("profile %s: negative annual usage %d", p.Code, p.AnnualUsage)
	}
	if p.UnitCost.IsNegative() {
		return eris.Errorf("profile %s: negative unit cost %s", p.Code, p.UnitCost)
	}
	if p.LeadTimeDays < 0 {
		return eris.Errorf("profile %s: negative lead time %d", p.Code, p.LeadTimeDays)
	}
	if p.ReorderPoint < 0 {
		return eris.Errorf("profile %s: negative reorder point %d", p.Code, p.ReorderPoint)
	}
	if p.EOQ < 0 {
		return eris.Errorf("profile %s: negative EOQ %d", p.Code, p.EOQ)
	}

	switch p.Obsolescence.Level {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return eris.Errorf("profile %s: invalid risk level %q", p.Code, p.Obsolescence.Level)
	}
	if p.Obsolescence.Score < 0 || p.Obsolescence.Score > 1 {
		return eris.Errorf("profile %s: risk score %f out of range", p.Code, p.Obsolescence.Score)
	}

	for _, d := range p.Duplicates {
		if d.Code == "" {
			return eris.Errorf("profile %s: duplicate with empty code", p.Code)
		}
		if d.Similarity < 0 || d.Similarity > 1 {
			return eris.Errorf("profile %s: duplicate %s similarity %f out of range", p.Code, d.Code, d.Similarity)
		}
	}

	switch p.Source {
	case SourceAI, SourceMock:
	default:
		return eris.Errorf("profile %s: invalid source %q", p.Code, p.Source)
	}

	return nil
}
