package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperr "assetfin-backend/pkg/errors"
)

type Method string

const (
	MethodBonus      Method = "BONUS"
	MethodSection179 Method = "SECTION_179"
	MethodMACRSGDS   Method = "MACRS_GDS"
	MethodMACRSADS   Method = "MACRS_ADS"
)

func (m Method) Valid() bool {
	switch m {
	case MethodBonus, MethodSection179, MethodMACRSGDS, MethodMACRSADS:
		return true
	}
	return false
}

// Replacement is an asset bought with the proceeds of a liquidation.
type Replacement struct {
	Name               string  `json:"name" validate:"required,max=128"`
	Cost               float64 `json:"cost" validate:"gte=0"`
	Method             Method  `json:"method" validate:"required"`
	BusinessUsePercent float64 `json:"business_use_percent"`
	InServiceMonth     string  `json:"in_service_month" validate:"omitempty,ym"`
	UsefulLife         int     `json:"useful_life" validate:"omitempty,gt=0,lte=50"`
}

// FirstYear is the deduction a replacement earns in its first year.
type FirstYear struct {
	AssetName               string   `json:"asset_name"`
	Cost                    float64  `json:"cost"`
	BusinessUsePercent      float64  `json:"business_use_percent"`
	DepreciableBasis        float64  `json:"depreciable_basis"`
	BonusDepreciation       float64  `json:"bonus_depreciation"`
	Section179Deduction     float64  `json:"section_179_deduction"`
	MACRSFirstYear          float64  `json:"macrs_first_year"`
	TotalFirstYearDeduction float64  `json:"total_first_year_deduction"`
	RemainingBasis          float64  `json:"remaining_basis"`
	MethodUsed              Method   `json:"method_used"`
	InServiceMonth          string   `json:"in_service_month"`
	Notes                   []string `json:"notes"`
}

// DeductionLimits bound §179 for a single asset. IncomeLimit nil means no
// business income cap. BonusPercent nil means the policy rate.
type DeductionLimits struct {
	Section179Available float64
	IncomeLimit         *float64
	BonusPercent        *float64
}

const defaultLife = 5

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// InServiceDate parses a YYYY-MM month; anything else means now.
func InServiceDate(month string, now time.Time) time.Time {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return now.UTC()
	}
	return t
}

// Depreciate computes r's first-year deduction under its own method. The
// policy applied is the one for the in-service year.
func (b Book) Depreciate(r Replacement, lim DeductionLimits, now time.Time) (FirstYear, error) {
	inService := InServiceDate(r.InServiceMonth, now)
	p := b.ForDate(inService)
	life := r.UsefulLife
	if life <= 0 {
		life = defaultLife
	}

	out := FirstYear{
		AssetName:          r.Name,
		Cost:               r.Cost,
		BusinessUsePercent: r.BusinessUsePercent,
		DepreciableBasis:   r.Cost * r.BusinessUsePercent / 100,
		MethodUsed:         r.Method,
		InServiceMonth:     inService.Format("2006-01"),
	}
	basis := out.DepreciableBasis

	switch r.Method {
	case MethodBonus:
		pct := p.BonusDepreciationPercent
		if lim.BonusPercent != nil {
			pct = *lim.BonusPercent
		}
		out.BonusDepreciation = basis * pct / 100
		out.TotalFirstYearDeduction = out.BonusDepreciation
		out.Notes = append(out.Notes, fmt.Sprintf("Bonus depreciation: %g%% of $%.2f", pct, basis))
	case MethodSection179:
		amt := min(basis, lim.Section179Available)
		if lim.IncomeLimit != nil {
			amt = min(amt, *lim.IncomeLimit)
		}
		amt = max(amt, 0)
		out.Section179Deduction = amt
		out.TotalFirstYearDeduction = amt
		out.Notes = append(out.Notes, fmt.Sprintf("§179 deduction: $%.2f", amt))
		if amt < basis {
			out.Notes = append(out.Notes, fmt.Sprintf("Limited by available §179 budget: $%.2f", lim.Section179Available))
		}
	case MethodMACRSGDS:
		rate := p.MACRSFirstYearRate(life)
		out.MACRSFirstYear = basis * rate
		out.TotalFirstYearDeduction = out.MACRSFirstYear
		out.Notes = append(out.Notes, fmt.Sprintf("MACRS %d-year GDS: %.2f%% first year", life, rate*100))
	case MethodMACRSADS:
		rate := 0.5 / float64(life)
		out.MACRSFirstYear = basis * rate
		out.TotalFirstYearDeduction = out.MACRSFirstYear
		out.Notes = append(out.Notes, fmt.Sprintf("MACRS ADS straight-line: %.2f%% first year", rate*100))
	default:
		return FirstYear{}, apperr.Newf(apperr.CodeUnsupportedMethod, "unknown depreciation method %q", r.Method)
	}
	out.RemainingBasis = basis - out.TotalFirstYearDeduction
	return out.rounded(), nil
}

// Optimal picks the largest first-year deduction among §179, bonus and GDS.
// Ties keep that order.
func (b Book) Optimal(r Replacement, lim DeductionLimits, now time.Time) FirstYear {
	var best FirstYear
	for i, m := range []Method{MethodSection179, MethodBonus, MethodMACRSGDS} {
		r.Method = m
		fy, _ := b.Depreciate(r, lim, now)
		if i == 0 || fy.TotalFirstYearDeduction > best.TotalFirstYearDeduction {
			best = fy
		}
	}
	best.Notes = append(best.Notes, "Selected optimal depreciation method")
	return best
}

func (f FirstYear) rounded() FirstYear {
	f.DepreciableBasis = round2(f.DepreciableBasis)
	f.BonusDepreciation = round2(f.BonusDepreciation)
	f.Section179Deduction = round2(f.Section179Deduction)
	f.MACRSFirstYear = round2(f.MACRSFirstYear)
	f.TotalFirstYearDeduction = round2(f.TotalFirstYearDeduction)
	f.RemainingBasis = round2(f.RemainingBasis)
	return f
}
