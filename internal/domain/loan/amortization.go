package loan

import (
	"math"
	"time"

	"assetfin-backend/pkg/date"
	apperr "assetfin-backend/pkg/errors"
)

// MonthlyPayment is the level annuity payment for principal at
// annualRatePercent (5.0 means 5%) over termYears. A zero rate splits the
// principal evenly; a non-positive term yields 0.
func MonthlyPayment(principal, annualRatePercent float64, termYears int) float64 {
	n := termYears * 12
	if n <= 0 {
		return 0
	}
	r := annualRatePercent / 1200
	if r == 0 {
		return principal / float64(n)
	}
	return principal * r / (1 - math.Pow(1+r, -float64(n)))
}

type Schedule struct {
	MonthlyPayment float64
	// resolved dates, after defaults were substituted
	StartDate string
	EndDate   string
	Points    []AmortizationPoint
}

// ResolveDates parses start and end. A missing or malformed start becomes
// today; a missing or malformed end becomes start plus the term.
func ResolveDates(start, end string, termYears int, now time.Time) (time.Time, time.Time) {
	s, err := date.Parse(start)
	if err != nil {
		y, m, d := now.UTC().Date()
		s = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	e, err := date.Parse(end)
	if err != nil {
		e = date.AddMonths(s, termYears*12)
	}
	return s, e
}

// ComputeAmortizationSchedule derives the monthly payment and projects the
// remaining balance month by month.
func ComputeAmortizationSchedule(principal, annualRatePercent float64, termYears int, start, end string, now time.Time) (*Schedule, error) {
	return GenerateSchedule(principal, MonthlyPayment(principal, annualRatePercent, termYears), termYears, start, end, now)
}

// GenerateSchedule subtracts monthlyPayment from the balance every month,
// starting one month after the start date, until the balance reaches zero or
// the end date passes. The payment that would overshoot is reduced to the
// balance left before zeroing it.
func GenerateSchedule(principal, monthlyPayment float64, termYears int, start, end string, now time.Time) (*Schedule, error) {
	if math.IsNaN(principal) || math.IsInf(principal, 0) || principal < 0 {
		return nil, apperr.New(apperr.CodeValidation, "loan amount must be a finite non-negative number")
	}
	if math.IsNaN(monthlyPayment) || math.IsInf(monthlyPayment, 0) || monthlyPayment < 0 {
		return nil, apperr.Newf(apperr.CodeComputation, "invalid monthly payment %v", monthlyPayment)
	}

	s, e := ResolveDates(start, end, termYears, now)
	out := &Schedule{
		MonthlyPayment: monthlyPayment,
		StartDate:      date.Format(s),
		EndDate:        date.Format(e),
	}

	remaining := principal
	for cur := date.AddMonths(s, 1); remaining > 0 && !cur.After(e); cur = date.AddMonths(cur, 1) {
		payment := monthlyPayment
		if payment > remaining {
			payment = remaining
			remaining = 0
		} else {
			remaining -= payment
		}
		if remaining < 0 || math.IsNaN(remaining) {
			return nil, apperr.Newf(apperr.CodeComputation, "remaining balance %v on %s", remaining, date.Format(cur))
		}
		out.Points = append(out.Points, AmortizationPoint{
			Date:             date.Format(cur),
			Payment:          float32(payment),
			RemainingBalance: float32(remaining),
		})
	}
	return out, nil
}
