package mockdata

import (
	"github.com/shopspring/decimal"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// knownCodes carries hand-curated profiles for codes that show up in every
// demo and training session. Generate returns these verbatim (with currency
// and timestamps filled in) instead of hashing.
var knownCodes = map[string]model.MaterialProfile{
	"BRG-6205": {
		Code:          "BRG-6205",
		Description:   "Deep groove ball bearing 6205-2RS, sealed both sides",
		Category:      "Bearings",
		UnitOfMeasure: "EA",
		StockLevel:    142,
		SafetyStock:   24,
		AnnualUsage:   480,
		UnitCost:      decimal.NewFromFloat(14.75),
		LeadTimeDays:  14,
		ReorderPoint:  51,
		EOQ:           221,
		Obsolescence: model.ObsolescenceRisk{
			Level:     model.RiskLow,
			Score:     0.08,
			Reasoning: "commodity bearing stocked by every industrial supplier",
		},
		Duplicates: []model.DuplicatePart{
			{Code: "BRG.6205.2RS", Description: "Same bearing, legacy dot-keyed code", Similarity: 0.97, Reason: "re-keyed during ERP migration"},
			{Code: "6205-2RS-SKF", Description: "SKF-branded equivalent", Similarity: 0.82, Reason: "OEM part number for the same component"},
		},
	},
	"PMP-SLURRY-001": {
		Code:          "PMP-SLURRY-001",
		Description:   "Warman 6/4 slurry pump impeller, high-chrome",
		Category:      "Pumps & Valves",
		UnitOfMeasure: "EA",
		StockLevel:    3,
		SafetyStock:   1,
		AnnualUsage:   8,
		UnitCost:      decimal.NewFromFloat(6480.00),
		LeadTimeDays:  84,
		ReorderPoint:  3,
		EOQ:           2,
		Obsolescence: model.ObsolescenceRisk{
			Level:     model.RiskMedium,
			Score:     0.42,
			Reasoning: "pump model superseded; impeller still produced on order",
		},
	},
	"GS-BOLT-24": {
		Code:          "GS-BOLT-24",
		Description:   "Friction rock bolt 2.4m galvanised, 47mm",
		Category:      "Ground Support",
		UnitOfMeasure: "EA",
		StockLevel:    5200,
		SafetyStock:   900,
		AnnualUsage:   26000,
		UnitCost:      decimal.NewFromFloat(11.20),
		LeadTimeDays:  14,
		ReorderPoint:  2356,
		EOQ:           1865,
		Obsolescence: model.ObsolescenceRisk{
			Level:     model.RiskLow,
			Score:     0.05,
			Reasoning: "high-turnover consumable with local manufacture",
		},
	},
}
