package tax

import (
	"fmt"
	"math"
	"time"

	"assetfin-backend/internal/domain/asset"
)

// DefaultCapitalGainsRate is the long-term rate used when none is given.
const DefaultCapitalGainsRate = 0.15

// Sale is an asset being liquidated. AssetID links it to a stored asset whose
// depreciation schedule supplies AccumulatedDepreciation when that is nil.
type Sale struct {
	AssetID                 string   `json:"asset_id,omitempty" validate:"omitempty,hex32"`
	AssetName               string   `json:"asset_name" validate:"max=128"`
	OriginalCost            float64  `json:"original_cost" validate:"gte=0"`
	AccumulatedDepreciation *float64 `json:"accumulated_depreciation,omitempty" validate:"omitempty,gte=0"`
	SalePrice               float64  `json:"sale_price"`
	TransactionFees         float64  `json:"transaction_fees" validate:"gte=0"`
	CloseMonth              string   `json:"close_month" validate:"omitempty,ym"`
}

// SaleResult splits the gain on a sale into §1245 recapture, taxed as
// ordinary income, and §1231 gain, taxed at the capital gains rate.
type SaleResult struct {
	AssetID                 string   `json:"asset_id,omitempty"`
	AssetName               string   `json:"asset_name"`
	SalePrice               float64  `json:"sale_price"`
	OriginalCost            float64  `json:"original_cost"`
	AccumulatedDepreciation float64  `json:"accumulated_depreciation"`
	AdjustedBasis           float64  `json:"adjusted_basis"`
	TotalGain               float64  `json:"total_gain"`
	Section1245Recapture    float64  `json:"section_1245_recapture"`
	Section1231Gain         float64  `json:"section_1231_gain"`
	GrossProceeds           float64  `json:"gross_proceeds"`
	TransactionFees         float64  `json:"transaction_fees"`
	NetProceedsBeforeTax    float64  `json:"net_proceeds_before_tax"`
	TaxOnRecapture          float64  `json:"tax_on_recapture"`
	TaxOnCapitalGain        float64  `json:"tax_on_capital_gain"`
	NetProceedsAfterTax     float64  `json:"net_proceeds_after_tax"`
	CloseMonth              string   `json:"close_month,omitempty"`
	Notes                   []string `json:"notes"`
}

// SaleImpact prices the sale of s. A nil AccumulatedDepreciation counts as
// none taken.
func SaleImpact(s Sale, ordinaryRate, capitalGainsRate float64) SaleResult {
	var accumulated float64
	if s.AccumulatedDepreciation != nil {
		accumulated = *s.AccumulatedDepreciation
	}
	basis := s.OriginalCost - accumulated
	gain := s.SalePrice - basis
	recapture := math.Min(math.Max(gain, 0), accumulated)
	capital := math.Max(gain-recapture, 0)

	taxRecapture := recapture * ordinaryRate
	taxCapital := capital * capitalGainsRate
	before := s.SalePrice - s.TransactionFees

	r := SaleResult{
		AssetID:                 s.AssetID,
		AssetName:               s.AssetName,
		SalePrice:               round2(s.SalePrice),
		OriginalCost:            round2(s.OriginalCost),
		AccumulatedDepreciation: round2(accumulated),
		AdjustedBasis:           round2(basis),
		TotalGain:               round2(gain),
		Section1245Recapture:    round2(recapture),
		Section1231Gain:         round2(capital),
		GrossProceeds:           round2(s.SalePrice),
		TransactionFees:         round2(s.TransactionFees),
		NetProceedsBeforeTax:    round2(before),
		TaxOnRecapture:          round2(taxRecapture),
		TaxOnCapitalGain:        round2(taxCapital),
		NetProceedsAfterTax:     round2(before - taxRecapture - taxCapital),
		CloseMonth:              s.CloseMonth,
	}

	r.Notes = append(r.Notes,
		fmt.Sprintf("Adjusted basis: $%.2f ($%.2f - $%.2f)", basis, s.OriginalCost, accumulated),
		fmt.Sprintf("Total gain: $%.2f", gain),
	)
	if recapture > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("§1245 recapture (ordinary income): $%.2f taxed at %.0f%%", recapture, ordinaryRate*100))
	}
	if capital > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("§1231 gain (capital gain): $%.2f taxed at %.0f%%", capital, capitalGainsRate*100))
	}
	if gain < 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("Loss on sale: $%.2f", -gain))
	}
	return r
}

// AdjustedBasis never goes below zero.
func AdjustedBasis(cost, depreciationTaken float64) float64 {
	return math.Max(cost-depreciationTaken, 0)
}

// EstimateAccumulated approximates the depreciation taken on cost since
// placed. 5-year MACRS counts whole years off the MACRS schedule; every other
// method is straight line over life.
func EstimateAccumulated(cost float64, placed time.Time, life int, method Method, now time.Time) float64 {
	if life <= 0 {
		life = defaultLife
	}
	days := math.Floor(now.Sub(placed).Hours() / 24)
	years := math.Max(days/365.25, 0)

	if method == MethodMACRSGDS && life == defaultLife {
		full := min(int(years), len(asset.MACRSRates()))
		if full == 0 {
			return 0
		}
		pts := asset.MACRSSchedule(cost, now)
		return round2(cost - float64(pts[full*12-1].BookValue))
	}
	return round2(math.Min(cost, cost/float64(life)*years))
}
