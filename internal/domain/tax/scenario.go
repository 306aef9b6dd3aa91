package tax

import (
	"fmt"
	"time"
)

// Scenario is a liquidation of AssetsToSell funding ReplacementAssets.
type Scenario struct {
	AssetsToSell            []Sale        `json:"assets_to_sell" validate:"dive"`
	ReplacementAssets       []Replacement `json:"replacement_assets" validate:"dive"`
	MarginalTaxRate         float64       `json:"marginal_tax_rate"`
	CapitalGainsRate        *float64      `json:"capital_gains_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	BusinessIncomeLimit     *float64      `json:"business_income_limit,omitempty" validate:"omitempty,gte=0"`
	OverrideSection179Limit *float64      `json:"override_section_179_limit,omitempty" validate:"omitempty,gte=0"`
	OverrideBonusPercent    *float64      `json:"override_bonus_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type Result struct {
	TotalSaleProceeds         float64 `json:"total_sale_proceeds"`
	TotalTransactionFees      float64 `json:"total_transaction_fees"`
	TotalSection1245Recapture float64 `json:"total_section_1245_recapture"`
	TotalSection1231Gain      float64 `json:"total_section_1231_gain"`
	TotalTaxOnSales           float64 `json:"total_tax_on_sales"`
	NetCashFromLiquidation    float64 `json:"net_cash_from_liquidation"`

	TotalReplacementCost       float64 `json:"total_replacement_cost"`
	TotalBonusDepreciation     float64 `json:"total_bonus_depreciation"`
	TotalSection179            float64 `json:"total_section_179"`
	TotalMACRSFirstYear        float64 `json:"total_macrs_first_year"`
	TotalFirstYearDeductions   float64 `json:"total_first_year_deductions"`
	TaxSavingsFromDeductions   float64 `json:"tax_savings_from_deductions"`
	CashRequiredForReplacement float64 `json:"cash_required_for_replacements"`
	NetCashFlow                float64 `json:"net_cash_flow"`

	SaleDetails        []SaleResult `json:"sale_details"`
	ReplacementDetails []FirstYear  `json:"replacement_details"`

	CalculatedAt time.Time `json:"calculated_at"`
	TaxYear      int       `json:"tax_year"`
	Warnings     []string  `json:"warnings"`
}

// Check is the outcome of Validate.
type Check struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (s Scenario) capitalGainsRate() float64 {
	if s.CapitalGainsRate != nil {
		return *s.CapitalGainsRate
	}
	return DefaultCapitalGainsRate
}

// Validate reports problems that make s meaningless, plus warnings about
// limits it will run into. It never fails.
func (b Book) Validate(s Scenario, now time.Time) Check {
	c := Check{Errors: []string{}, Warnings: []string{}}
	if len(s.AssetsToSell) == 0 && len(s.ReplacementAssets) == 0 {
		c.Errors = append(c.Errors, "Must include either assets to sell or replacement assets")
	}
	if s.MarginalTaxRate < 0 || s.MarginalTaxRate > 1 {
		c.Errors = append(c.Errors, "Marginal tax rate must be between 0 and 1")
	}
	if len(s.ReplacementAssets) > 0 {
		var total float64
		for _, r := range s.ReplacementAssets {
			total += r.Cost
		}
		p := b.ForDate(now)
		if total > p.Section179PhaseoutThreshold {
			c.Warnings = append(c.Warnings, fmt.Sprintf(
				"Total replacement cost ($%.0f) exceeds §179 phaseout threshold ($%.0f). §179 deduction will be reduced.",
				total, p.Section179PhaseoutThreshold))
		}
	}
	for _, sale := range s.AssetsToSell {
		if sale.SalePrice < 0 {
			c.Errors = append(c.Errors, fmt.Sprintf("Sale price for %s cannot be negative", sale.AssetName))
		}
	}
	for _, r := range s.ReplacementAssets {
		if r.BusinessUsePercent < 0 || r.BusinessUsePercent > 100 {
			c.Errors = append(c.Errors, fmt.Sprintf("Business use for %s must be between 0 and 100", r.Name))
		}
	}
	c.Valid = len(c.Errors) == 0
	return c
}

// Calculate prices every sale, then depreciates every replacement against a
// shared §179 budget for the current tax year. Replacements with an unknown
// method are skipped with a warning.
func (b Book) Calculate(s Scenario, now time.Time) Result {
	res := Result{
		SaleDetails:        []SaleResult{},
		ReplacementDetails: []FirstYear{},
		CalculatedAt:       now.UTC(),
		TaxYear:            now.Year(),
		Warnings:           []string{},
	}

	cgRate := s.capitalGainsRate()
	for _, sale := range s.AssetsToSell {
		r := SaleImpact(sale, s.MarginalTaxRate, cgRate)
		res.SaleDetails = append(res.SaleDetails, r)
		res.TotalSaleProceeds += r.GrossProceeds
		res.TotalTransactionFees += r.TransactionFees
		res.TotalSection1245Recapture += r.Section1245Recapture
		res.TotalSection1231Gain += r.Section1231Gain
		res.TotalTaxOnSales += r.TaxOnRecapture + r.TaxOnCapitalGain
	}
	res.NetCashFromLiquidation = res.TotalSaleProceeds - res.TotalTransactionFees - res.TotalTaxOnSales

	for _, r := range s.ReplacementAssets {
		res.TotalReplacementCost += r.Cost
	}
	budget := b.ForDate(now).Section179Available(res.TotalReplacementCost)
	if s.OverrideSection179Limit != nil {
		budget = *s.OverrideSection179Limit
	}
	remaining := budget

	for _, r := range s.ReplacementAssets {
		fy, err := b.Depreciate(r, DeductionLimits{
			Section179Available: remaining,
			IncomeLimit:         s.BusinessIncomeLimit,
			BonusPercent:        s.OverrideBonusPercent,
		}, now)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Unknown method '%s' for %s", r.Method, r.Name))
			continue
		}
		res.TotalBonusDepreciation += fy.BonusDepreciation
		res.TotalSection179 += fy.Section179Deduction
		res.TotalMACRSFirstYear += fy.MACRSFirstYear
		remaining -= fy.Section179Deduction
		res.ReplacementDetails = append(res.ReplacementDetails, fy)
	}

	res.TotalFirstYearDeductions = res.TotalBonusDepreciation + res.TotalSection179 + res.TotalMACRSFirstYear
	res.TaxSavingsFromDeductions = res.TotalFirstYearDeductions * s.MarginalTaxRate
	res.CashRequiredForReplacement = res.TotalReplacementCost
	res.NetCashFlow = res.NetCashFromLiquidation + res.TaxSavingsFromDeductions - res.CashRequiredForReplacement

	if remaining < budget {
		res.Warnings = append(res.Warnings, fmt.Sprintf("§179 limit reached. Used $%.0f of $%.0f available.", budget-remaining, budget))
	}
	if res.NetCashFlow < 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Scenario requires additional cash: $%.2f", -res.NetCashFlow))
	}
	return res.rounded()
}

func (r Result) rounded() Result {
	for _, f := range []*float64{
		&r.TotalSaleProceeds, &r.TotalTransactionFees, &r.TotalSection1245Recapture,
		&r.TotalSection1231Gain, &r.TotalTaxOnSales, &r.NetCashFromLiquidation,
		&r.TotalReplacementCost, &r.TotalBonusDepreciation, &r.TotalSection179,
		&r.TotalMACRSFirstYear, &r.TotalFirstYearDeductions, &r.TaxSavingsFromDeductions,
		&r.CashRequiredForReplacement, &r.NetCashFlow,
	} {
		*f = round2(*f)
	}
	return r
}
