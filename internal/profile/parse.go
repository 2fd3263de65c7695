package profile

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// wireProfile mirrors the response schema. Code, currency and provenance
// are filled in by the service, not trusted from the model.
type wireProfile struct {
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	StockLevel    int64           `json:"stock_level"`
	SafetyStock   int64           `json:"safety_stock"`
	AnnualUsage   int64           `json:"annual_usage"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LeadTimeDays  int             `json:"lead_time_days"`
	ReorderPoint  int64           `json:"reorder_point"`
	EOQ           int64           `json:"eoq"`
	Obsolescence  struct {
		Level     string  `json:"level"`
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	} `json:"obsolescence"`
	Duplicates []struct {
		Code        string  `json:"code"`
		Description string  `json:"description"`
		Similarity  float64 `json:"similarity"`
		Reason      string  `json:"reason"`
	} `json:"duplicates"`
}

// extractJSON pulls a JSON object out of model output. Models occasionally
// wrap the payload in markdown fences or surround it with prose despite the
// instructions, so take everything between the first '{' and the last '}'.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", eris.Errorf("no JSON object in response: %.80s", text)
	}
	return text[start : end+1], nil
}

// parseProfile decodes model output into a validated MaterialProfile for the
// given code and currency.
func parseProfile(text, code, currency string) (*model.MaterialProfile, error) {
	payload, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var wire wireProfile
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, eris.Wrap(err, "profile: unmarshal response")
	}

	p := &model.MaterialProfile{
		Code:          code,
		Description:   wire.Description,
		Category:      wire.Category,
		UnitOfMeasure: wire.UnitOfMeasure,
		StockLevel:    wire.StockLevel,
		SafetyStock:   wire.SafetyStock,
		AnnualUsage:   wire.AnnualUsage,
		UnitCost:      wire.UnitCost,
		Currency:      currency,
		LeadTimeDays:  wire.LeadTimeDays,
		ReorderPoint:  wire.ReorderPoint,
		EOQ:           wire.EOQ,
		Obsolescence: model.ObsolescenceRisk{
			Level:     model.RiskLevel(wire.Obsolescence.Level),
			Score:     wire.Obsolescence.Score,
			Reasoning: wire.Obsolescence.Reasoning,
		},
		Source:      model.SourceAI,
		GeneratedAt: time.Now().UTC(),
	}
	for _, d := range wire.Duplicates {
		p.Duplicates = append(p.Duplicates, model.DuplicatePart{
			Code:        d.Code,
			Description: d.Description,
			Similarity:  d.Similarity,
			Reason:      d.Reason,
		})
	}

	if err := p.Validate(); err != nil {
		return nil, eris.Wrap(err, "profile: response failed validation")
	}
	return p, nil
}
