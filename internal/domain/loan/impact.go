package loan

import (
	"fmt"
	"time"
)

type PayoffImpact struct {
	HasLoan            bool    `json:"has_loan"`
	RemainingBalance   float64 `json:"remaining_balance"`
	PrepaymentPenalty  float64 `json:"prepayment_penalty"`
	TotalPayoffAmount  float64 `json:"total_payoff_amount"`
	InterestPaidToDate float64 `json:"interest_paid_to_date"`
	InterestSavings    float64 `json:"interest_savings"`
}

// LiquidationImpact is what selling an asset leaves in hand once the loan on
// it is settled.
type LiquidationImpact struct {
	AssetSalePrice  float64      `json:"asset_sale_price"`
	TransactionFees float64      `json:"transaction_fees"`
	LoanPayoff      PayoffImpact `json:"loan_payoff"`
	GrossProceeds   float64      `json:"gross_proceeds"`
	TotalCosts      float64      `json:"total_costs"`
	NetProceeds     float64      `json:"net_proceeds"`
	LiquidationDate string       `json:"liquidation_date"`
}

type PaymentComparison struct {
	OldMonthlyPayment    float64 `json:"old_monthly_payment"`
	NewMonthlyPayment    float64 `json:"new_monthly_payment"`
	MonthlyChange        float64 `json:"monthly_change"`
	MonthlyChangePercent float64 `json:"monthly_change_percent"`
}

type InterestComparison struct {
	TotalInterestOldLoan float64 `json:"total_interest_old_loan"`
	TotalInterestNewLoan float64 `json:"total_interest_new_loan"`
	InterestCostChange   float64 `json:"interest_cost_change"`
	InterestSaved        float64 `json:"interest_saved"`
}

type TermsComparison struct {
	HasOldLoan        bool    `json:"has_old_loan"`
	HasNewLoan        bool    `json:"has_new_loan"`
	OldLoanTermMonths int     `json:"old_loan_term_months"`
	NewLoanTermMonths int     `json:"new_loan_term_months"`
	OldInterestRate   float64 `json:"old_interest_rate"`
	NewInterestRate   float64 `json:"new_interest_rate"`
}

type ReplacementImpact struct {
	ReplacementAssetPrice      float64            `json:"replacement_asset_price"`
	NetProceedsFromLiquidation float64            `json:"net_proceeds_from_liquidation"`
	DownPaymentRequired        float64            `json:"down_payment_required"`
	CashRequired               float64            `json:"cash_required"`
	CashSurplus                float64            `json:"cash_surplus"`
	Payments                   PaymentComparison  `json:"monthly_payment_comparison"`
	Interest                   InterestComparison `json:"interest_cost_comparison"`
	Terms                      TermsComparison    `json:"loan_terms_comparison"`
}

type Recommendation struct {
	Recommendation string   `json:"recommendation"`
	PositiveScore  int      `json:"positive_score"`
	NegativeScore  int      `json:"negative_score"`
	KeyFactors     []string `json:"key_factors"`
}

type ScenarioSummary struct {
	LiquidationDate           string  `json:"liquidation_date"`
	NetCashImpact             float64 `json:"net_cash_impact"`
	NetCashSurplus            float64 `json:"net_cash_surplus"`
	MonthlyObligationChange   float64 `json:"monthly_obligation_change"`
	AnnualObligationChange    float64 `json:"annual_obligation_change"`
	InterestSavingsFromPayoff float64 `json:"interest_savings_from_payoff"`
	TotalInterestCostChange   float64 `json:"total_interest_cost_change"`
}

type ScenarioImpact struct {
	Summary        ScenarioSummary   `json:"scenario_summary"`
	Liquidation    LiquidationImpact `json:"liquidation_details"`
	Replacement    ReplacementImpact `json:"replacement_details"`
	Recommendation Recommendation    `json:"recommendation"`
}

// ReplacementTerms describes financing for a replacement purchase. The loan
// starts on the liquidation date.
type ReplacementTerms struct {
	Principal    float64 `json:"loan_amount" validate:"gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	TermYears    int     `json:"loan_term_years" validate:"gt=0,lte=50"`
}

// Loan builds the hypothetical loan the terms describe.
func (t ReplacementTerms) Loan(start string) *Loan {
	return &Loan{
		Principal:      t.Principal,
		InterestRate:   t.InterestRate,
		TermYears:      t.TermYears,
		MonthlyPayment: MonthlyPayment(t.Principal, t.InterestRate, t.TermYears),
		StartDate:      start,
	}
}

// TotalInterest is the interest paid over the loan's full breakdown.
func TotalInterest(l *Loan, now time.Time) float64 {
	var sum float64
	for _, inst := range AmortizationBreakdown(l, now) {
		sum += inst.Interest
	}
	return sum
}

// Liquidation settles existing (nil when the asset is unencumbered) out of the
// sale on liquidationDate. penaltyPct applies to the balance left then.
func Liquidation(salePrice float64, existing *Loan, liquidationDate string, fees, penaltyPct float64, now time.Time) LiquidationImpact {
	var p PayoffImpact
	if existing != nil {
		q := Payoff(existing, liquidationDate, penaltyPct, now)
		p = PayoffImpact{
			HasLoan:            true,
			RemainingBalance:   q.RemainingBalance,
			PrepaymentPenalty:  q.PrepaymentPenalty,
			TotalPayoffAmount:  q.TotalPayoffAmount,
			InterestPaidToDate: q.TotalInterestPaid,
			InterestSavings:    round2(TotalInterest(existing, now) - q.TotalInterestPaid),
		}
		liquidationDate = q.PayoffDate
	}
	costs := fees + p.TotalPayoffAmount
	return LiquidationImpact{
		AssetSalePrice:  round2(salePrice),
		TransactionFees: round2(fees),
		LoanPayoff:      p,
		GrossProceeds:   round2(salePrice),
		TotalCosts:      round2(costs),
		NetProceeds:     round2(salePrice - costs),
		LiquidationDate: liquidationDate,
	}
}

// Replacement compares buying price with the proceeds of liq, financed by
// replacement (nil for cash) against keeping existing.
func Replacement(liq LiquidationImpact, price float64, replacement, existing *Loan, now time.Time) ReplacementImpact {
	down := price
	if replacement != nil {
		down = price - replacement.Principal
	}
	cash := down - liq.NetProceeds

	var oldPay, newPay, oldInterest, newInterest float64
	var terms TermsComparison
	if existing != nil {
		oldPay = existing.MonthlyPayment
		oldInterest = TotalInterest(existing, now)
		terms.HasOldLoan = true
		terms.OldLoanTermMonths = existing.TermYears * 12
		terms.OldInterestRate = existing.InterestRate
	}
	if replacement != nil {
		newPay = replacement.MonthlyPayment
		newInterest = TotalInterest(replacement, now)
		terms.HasNewLoan = true
		terms.NewLoanTermMonths = replacement.TermYears * 12
		terms.NewInterestRate = replacement.InterestRate
	}

	change := newPay - oldPay
	pct := 0.0
	if oldPay > 0 {
		pct = round2(change / oldPay * 100)
	}
	interestChange := newInterest - oldInterest

	return ReplacementImpact{
		ReplacementAssetPrice:      round2(price),
		NetProceedsFromLiquidation: liq.NetProceeds,
		DownPaymentRequired:        round2(down),
		CashRequired:               round2(cash),
		CashSurplus:                round2(max(-cash, 0)),
		Payments: PaymentComparison{
			OldMonthlyPayment:    round2(oldPay),
			NewMonthlyPayment:    round2(newPay),
			MonthlyChange:        round2(change),
			MonthlyChangePercent: pct,
		},
		Interest: InterestComparison{
			TotalInterestOldLoan: round2(oldInterest),
			TotalInterestNewLoan: round2(newInterest),
			InterestCostChange:   round2(interestChange),
			InterestSaved:        round2(max(-interestChange, 0)),
		},
		Terms: terms,
	}
}

// Scenario runs Liquidation then Replacement and scores the outcome.
func Scenario(salePrice float64, liquidationDate string, existing *Loan, price float64, replacement *Loan, fees, penaltyPct float64, now time.Time) ScenarioImpact {
	liq := Liquidation(salePrice, existing, liquidationDate, fees, penaltyPct, now)
	rep := Replacement(liq, price, replacement, existing, now)
	monthly := rep.Payments.MonthlyChange
	return ScenarioImpact{
		Summary: ScenarioSummary{
			LiquidationDate:           liq.LiquidationDate,
			NetCashImpact:             rep.CashRequired,
			NetCashSurplus:            rep.CashSurplus,
			MonthlyObligationChange:   monthly,
			AnnualObligationChange:    round2(monthly * 12),
			InterestSavingsFromPayoff: liq.LoanPayoff.InterestSavings,
			TotalInterestCostChange:   rep.Interest.InterestCostChange,
		},
		Liquidation:    liq,
		Replacement:    rep,
		Recommendation: recommend(liq, rep),
	}
}

// recommend weighs four signals; interest cost counts double.
func recommend(liq LiquidationImpact, rep ReplacementImpact) Recommendation {
	var r Recommendation
	add := func(good bool, weight int, factor string) {
		if good {
			r.PositiveScore += weight
		} else {
			r.NegativeScore += weight
		}
		r.KeyFactors = append(r.KeyFactors, factor)
	}

	if liq.NetProceeds > 0 {
		add(true, 1, "Liquidation generates positive net proceeds")
	} else {
		add(false, 1, "Liquidation results in net loss")
	}

	switch m := rep.Payments.MonthlyChange; {
	case m < 0:
		add(true, 1, fmt.Sprintf("Monthly payment decreases by $%.2f", -m))
	case m > 0:
		add(false, 1, fmt.Sprintf("Monthly payment increases by $%.2f", m))
	}

	switch d := rep.Interest.InterestCostChange; {
	case d < 0:
		add(true, 2, fmt.Sprintf("Total interest savings of $%.2f", -d))
	case d > 0:
		add(false, 2, fmt.Sprintf("Increased interest costs of $%.2f", d))
	}

	if rep.CashRequired <= 0 {
		add(true, 1, "No additional cash required (surplus available)")
	} else {
		add(false, 1, fmt.Sprintf("Additional cash required: $%.2f", rep.CashRequired))
	}

	pos, neg := float64(r.PositiveScore), float64(r.NegativeScore)
	switch {
	case pos > neg*1.5:
		r.Recommendation = "Favorable - This scenario shows strong financial benefits"
	case pos > neg:
		r.Recommendation = "Moderately Favorable - This scenario has some financial benefits"
	case pos == neg:
		r.Recommendation = "Neutral - This scenario has balanced pros and cons"
	default:
		r.Recommendation = "Unfavorable - This scenario may have negative financial impacts"
	}
	return r
}
