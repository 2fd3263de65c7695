// Package mockdata produces deterministic material profiles used whenever
// the AI endpoint is unavailable, disabled, or returns garbage. The same
// normalized code always yields the same profile.
package mockdata

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kimberlite-group/matprofile/internal/model"
)

// Generate builds a mock profile for a normalized material code. All figures
// derive from an FNV-1a hash of the code, so repeated lookups agree with each
// other and with history entries written earlier.
func Generate(code, currency string) *model.MaterialProfile {
	if p, ok := knownCodes[code]; ok {
		out := p // copy
		out.Duplicates = slices.Clone(p.Duplicates)
		out.Currency = currency
		out.Source = model.SourceMock
		out.GeneratedAt = time.Now().UTC()
		return &out
	}

	seed := hashCode(code)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	cat := catalog[int(seed%uint64(len(catalog)))]
	desc := cat.Descriptions[rng.IntN(len(cat.Descriptions))]

	dailyUse := 1 + rng.Int64N(cat.MaxDailyUse)
	annualUsage := dailyUse * 250 // working days, not calendar days
	leadTime := cat.MinLeadDays + rng.IntN(cat.MaxLeadDays-cat.MinLeadDays+1)
	safetyStock := int64(math.Ceil(float64(dailyUse*int64(leadTime)) * 0.25))
	stock := rng.Int64N(cat.MaxStock + 1)

	unitCost := cat.MinCost + rng.Float64()*(cat.MaxCost-cat.MinCost)

	// Classic textbook figures; fabricated inputs, consistent arithmetic.
	reorderPoint := dailyUse*int64(leadTime) + safetyStock
	const orderCost = 150.0
	holdingCost := math.Max(unitCost*0.2, 0.5)
	eoq := int64(math.Round(math.Sqrt(2 * float64(annualUsage) * orderCost / holdingCost)))

	risk := riskFor(seed, leadTime)

	return &model.MaterialProfile{
		Code:          code,
		Description:   fmt.Sprintf("%s (%s)", desc, code),
		Category:      cat.Name,
		UnitOfMeasure: cat.UnitOfMeasure,
		StockLevel:    stock,
		SafetyStock:   safetyStock,
		AnnualUsage:   annualUsage,
		UnitCost:      decimal.NewFromFloat(unitCost).Round(2),
		Currency:      currency,
		LeadTimeDays:  leadTime,
		ReorderPoint:  reorderPoint,
		EOQ:           eoq,
		Obsolescence:  risk,
		Duplicates:    duplicatesFor(code, desc, rng),
		Source:        model.SourceMock,
		GeneratedAt:   time.Now().UTC(),
	}
}

func hashCode(code string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return h.Sum64()
}

func riskFor(seed uint64, leadTime int) model.ObsolescenceRisk {
	// Band by hash; long-lead items skew toward higher risk.
	band := (seed >> 32) % 100
	if leadTime > 90 {
		band += 25
	}

	switch {
	case band < 55:
		return model.ObsolescenceRisk{
			Level:     model.RiskLow,
			Score:     float64(band%30)/100 + 0.05,
			Reasoning: "actively stocked catalogue item with multiple suppliers",
		}
	case band < 85:
		return model.ObsolescenceRisk{
			Level:     model.RiskMedium,
			Score:     0.35 + float64(band%30)/100,
			Reasoning: "single regional supplier; superseded variants exist",
		}
	default:
		return model.ObsolescenceRisk{
			Level:     model.RiskHigh,
			Score:     0.70 + float64(band%25)/100,
			Reasoning: "OEM has discontinued this line; remaining stock is last-time buy",
		}
	}
}

// duplicatesFor fabricates zero to two near-duplicate codes by mutating the
// original the way duplicate entries actually arise: a re-keyed separator or
// a supplier-suffixed variant of the same part.
func duplicatesFor(code, desc string, rng *rand.Rand) []model.DuplicatePart {
	n := rng.IntN(3)
	if n == 0 {
		return nil
	}

	dups := make([]model.DuplicatePart, 0, n)

	if n >= 1 {
		mutated := swapSeparators(code)
		if mutated == code {
			mutated = code + "-ALT"
		}
		dups = append(dups, model.DuplicatePart{
			Code:        mutated,
			Description: desc + ", re-keyed entry",
			Similarity:  0.85 + rng.Float64()*0.14,
			Reason:      "same part entered under a different code format",
		})
	}
	if n >= 2 {
		dups = append(dups, model.DuplicatePart{
			Code:        code + "-OEM",
			Description: desc + ", OEM-branded equivalent",
			Similarity:  0.60 + rng.Float64()*0.25,
			Reason:      "OEM part number for the same component",
		})
	}
	return dups
}

func swapSeparators(code string) string {
	switch {
	case strings.Contains(code, "-"):
		return strings.ReplaceAll(code, "-", ".")
	case strings.Contains(code, "."):
		return strings.ReplaceAll(code, ".", "-")
	case strings.Contains(code, "/"):
		return strings.ReplaceAll(code, "/", "-")
	default:
		return code
	}
}
