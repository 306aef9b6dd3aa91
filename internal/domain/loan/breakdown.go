package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"assetfin-backend/pkg/date"
)

type Installment struct {
	Number           int     `json:"payment_number"`
	Date             string  `json:"payment_date"`
	Payment          float64 `json:"payment_amount"`
	Principal        float64 `json:"principal_payment"`
	Interest         float64 `json:"interest_payment"`
	RemainingBalance float64 `json:"remaining_balance"`
}

type PayoffQuote struct {
	PayoffDate         string  `json:"payoff_date"`
	RemainingBalance   float64 `json:"remaining_balance"`
	PrepaymentPenalty  float64 `json:"prepayment_penalty"`
	TotalPayoffAmount  float64 `json:"total_payoff_amount"`
	TotalInterestPaid  float64 `json:"total_interest_paid"`
	TotalPrincipalPaid float64 `json:"total_principal_paid"`
	OriginalLoanAmount float64 `json:"original_loan_amount"`
}

// balances under a cent are treated as settled
const settledBalance = 0.01

// proration uses a flat 30 day month
const prorationDays = 30

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// AmortizationBreakdown splits each payment of l into interest and principal.
// Interest accrues on the running balance at rate/1200. Amounts are rounded
// to cents on output only.
func AmortizationBreakdown(l *Loan, now time.Time) []Installment {
	start, end := ResolveDates(l.StartDate, l.EndDate, l.TermYears, now)
	rate := l.InterestRate / 1200

	var out []Installment
	remaining := l.Principal
	n := 1
	for cur := date.AddMonths(start, 1); remaining > settledBalance && !cur.After(end); cur = date.AddMonths(cur, 1) {
		interest := remaining * rate
		principal := l.MonthlyPayment - interest
		payment := l.MonthlyPayment
		if principal > remaining {
			principal = remaining
			payment = principal + interest
		}
		remaining -= principal
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, Installment{
			Number:           n,
			Date:             date.Format(cur),
			Payment:          round2(payment),
			Principal:        round2(principal),
			Interest:         round2(interest),
			RemainingBalance: round2(remaining),
		})
		n++
	}
	return out
}

// Payoff quotes the amount needed to settle l on payoffDate. Installments due
// on or before that date count as paid; interest for the month in progress is
// prorated. penaltyPct is charged on the remaining balance. A malformed
// payoffDate means today.
func Payoff(l *Loan, payoffDate string, penaltyPct float64, now time.Time) PayoffQuote {
	target, err := date.Parse(payoffDate)
	if err != nil {
		target = now.UTC()
	}

	remaining := decimal.NewFromFloat(l.Principal)
	interestPaid := decimal.Zero
	principalPaid := decimal.Zero

	for _, inst := range AmortizationBreakdown(l, now) {
		due, _ := date.Parse(inst.Date)
		if !due.After(target) {
			interestPaid = interestPaid.Add(decimal.NewFromFloat(inst.Interest))
			principalPaid = principalPaid.Add(decimal.NewFromFloat(inst.Principal))
			remaining = decimal.NewFromFloat(inst.RemainingBalance)
			continue
		}
		elapsed := int(target.Sub(date.AddMonths(due, -1)).Hours() / 24)
		if elapsed > 0 && elapsed < prorationDays {
			prorated := decimal.NewFromFloat(inst.Interest).
				Mul(decimal.NewFromInt(int64(elapsed))).
				Div(decimal.NewFromInt(prorationDays))
			interestPaid = interestPaid.Add(prorated)
		}
		break
	}

	penalty := remaining.Mul(decimal.NewFromFloat(penaltyPct)).Div(decimal.NewFromInt(100))
	f := func(d decimal.Decimal) float64 {
		v, _ := d.Round(2).Float64()
		return v
	}
	return PayoffQuote{
		PayoffDate:         date.Format(target),
		RemainingBalance:   f(remaining),
		PrepaymentPenalty:  f(penalty),
		TotalPayoffAmount:  f(remaining.Add(penalty)),
		TotalInterestPaid:  f(interestPaid),
		TotalPrincipalPaid: f(principalPaid),
		OriginalLoanAmount: l.Principal,
	}
}
