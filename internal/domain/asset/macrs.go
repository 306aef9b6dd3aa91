package asset

import (
	"math"
	"time"
)

// macrsRates is the half-year convention table for 5-year property.
var macrsRates = [...]float64{0.20, 0.32, 0.192, 0.1152, 0.1152, 0.0576}

// MACRSSchedule spreads each MACRS year evenly over twelve months, floored at
// zero. It is not reachable through ComputeDepreciationSchedule.
func MACRSSchedule(bookValue float64, now time.Time) []DepreciationPoint {
	values := make([]float64, 0, len(macrsRates)*12)
	bv := bookValue
	for _, rate := range macrsRates {
		monthly := bookValue * rate / 12
		for m := 0; m < 12; m++ {
			bv = math.Max(bv-monthly, 0)
			values = append(values, bv)
		}
	}
	return toPoints(values, ScheduleAnchor(now))
}

// MACRSRates returns a copy of the 5-year table, first year first.
func MACRSRates() []float64 {
	out := make([]float64, len(macrsRates))
	copy(out, macrsRates[:])
	return out
}
