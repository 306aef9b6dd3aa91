package asset

import (
	"fmt"
	"math"
	"time"

	"assetfin-backend/pkg/date"
	apperr "assetfin-backend/pkg/errors"
)

type Method string

const (
	MethodStraightLine           Method = "StraightLine"
	MethodDecliningBalance       Method = "DecliningBalance"
	MethodDoubleDecliningBalance Method = "DoubleDecliningBalance"
	MethodUnitsOfProduction      Method = "UnitsOfProduction"
)

// Params holds the method-specific inputs. Which fields are required depends
// on the method; the rest are zeroed by NormalizeParams.
type Params struct {
	UsefulLife   int     `json:"useful_life"`
	Rate         float64 `json:"depreciation_rate"`
	TotalUnits   int64   `json:"total_expected_units"`
	UnitsPerYear int64   `json:"units_per_year"`
}

type strategy struct {
	validate func(Params) error
	// run returns one float64 book value per month, already clamped at salvage
	run func(bookValue, salvage float64, p Params) []float64
	// keep zeroes the parameters the method ignores
	keep func(Params) Params
}

var strategies = map[Method]strategy{
	MethodStraightLine: {
		validate: requireLife(MethodStraightLine),
		run: func(bv, salvage float64, p Params) []float64 {
			return straightLine(bv, salvage, p.UsefulLife)
		},
		keep: func(p Params) Params { return Params{UsefulLife: p.UsefulLife} },
	},
	MethodDecliningBalance: {
		validate: func(p Params) error {
			if p.UsefulLife <= 0 || p.Rate <= 0 {
				return missing(MethodDecliningBalance, "useful_life", "depreciation_rate")
			}
			return nil
		},
		run: func(bv, salvage float64, p Params) []float64 {
			return decliningBalance(bv, salvage, p.UsefulLife, p.Rate)
		},
		keep: func(p Params) Params { return Params{UsefulLife: p.UsefulLife, Rate: p.Rate} },
	},
	MethodDoubleDecliningBalance: {
		validate: requireLife(MethodDoubleDecliningBalance),
		run: func(bv, salvage float64, p Params) []float64 {
			return decliningBalance(bv, salvage, p.UsefulLife, 2.0/float64(p.UsefulLife))
		},
		keep: func(p Params) Params { return Params{UsefulLife: p.UsefulLife} },
	},
	MethodUnitsOfProduction: {
		validate: func(p Params) error {
			if p.TotalUnits <= 0 || p.UnitsPerYear <= 0 {
				return missing(MethodUnitsOfProduction, "total_expected_units", "units_per_year")
			}
			return nil
		},
		run: func(bv, salvage float64, p Params) []float64 {
			return unitsOfProduction(bv, salvage, p.TotalUnits, p.UnitsPerYear)
		},
		keep: func(p Params) Params { return Params{TotalUnits: p.TotalUnits, UnitsPerYear: p.UnitsPerYear} },
	},
}

func requireLife(m Method) func(Params) error {
	return func(p Params) error {
		if p.UsefulLife <= 0 {
			return missing(m, "useful_life")
		}
		return nil
	}
}

func missing(m Method, names ...string) error {
	return apperr.Newf(apperr.CodeMissingParameter, "%s requires %v", m, names)
}

// ParseMethod maps a method name onto the closed set of supported methods.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if _, ok := strategies[m]; !ok {
		return "", apperr.Newf(apperr.CodeUnsupportedMethod, "unsupported depreciation method %q", s)
	}
	return m, nil
}

// NormalizeParams zeroes every parameter that m does not use. Unknown methods
// return p unchanged.
func NormalizeParams(m Method, p Params) Params {
	s, ok := strategies[m]
	if !ok {
		return p
	}
	return s.keep(p)
}

// ScheduleAnchor is the date of the first point of every depreciation
// schedule: the first day of now's month, one year back.
func ScheduleAnchor(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y-1, m, 1, 0, 0, 0, 0, time.UTC)
}

// ComputeDepreciationSchedule returns the monthly book value trajectory of an
// asset. The result depends only on its arguments.
func ComputeDepreciationSchedule(m Method, bookValue, salvageValue float64, p Params, now time.Time) ([]DepreciationPoint, error) {
	s, ok := strategies[m]
	if !ok {
		return nil, apperr.Newf(apperr.CodeUnsupportedMethod, "unsupported depreciation method %q", m)
	}
	if err := s.validate(p); err != nil {
		return nil, err
	}
	if err := checkValues(bookValue, salvageValue); err != nil {
		return nil, err
	}
	return toPoints(s.run(bookValue, salvageValue, p), ScheduleAnchor(now)), nil
}

func checkValues(bookValue, salvage float64) error {
	switch {
	case math.IsNaN(bookValue) || math.IsInf(bookValue, 0) || math.IsNaN(salvage) || math.IsInf(salvage, 0):
		return apperr.New(apperr.CodeValidation, "book and salvage values must be finite")
	case salvage < 0:
		return apperr.New(apperr.CodeValidation, "salvage value must not be negative")
	case bookValue < salvage:
		return apperr.New(apperr.CodeValidation,
			fmt.Sprintf("book value %.2f is below salvage value %.2f", bookValue, salvage))
	}
	return nil
}

// toPoints is the only place values are narrowed to float32.
func toPoints(values []float64, anchor time.Time) []DepreciationPoint {
	out := make([]DepreciationPoint, len(values))
	for i, v := range values {
		out[i] = DepreciationPoint{
			Date:      date.Format(date.AddMonths(anchor, i)),
			BookValue: float32(v),
		}
	}
	return out
}

func straightLine(bv, salvage float64, life int) []float64 {
	monthly := (bv - salvage) / float64(life) / 12
	out := make([]float64, 0, life*12)
	for i := 0; i < life*12; i++ {
		bv = math.Max(bv-monthly, salvage)
		out = append(out, bv)
	}
	return out
}

func decliningBalance(bv, salvage float64, life int, rate float64) []float64 {
	out := make([]float64, 0, life*12)
	for i := 0; i < life*12; i++ {
		bv = math.Max(bv-bv*rate/12, salvage)
		out = append(out, bv)
	}
	return out
}

func unitsOfProduction(bv, salvage float64, total, perYear int64) []float64 {
	perUnit := (bv - salvage) / float64(total)
	// ceil(total / perYear * 12) without float rounding at exact multiples
	months := (total*12 + perYear - 1) / perYear
	monthly := perYear / 12

	out := make([]float64, 0, months)
	for m := int64(1); m <= months; m++ {
		units := min(monthly, total-(m-1)*monthly)
		if units < 0 {
			units = 0
		}
		bv = math.Max(bv-perUnit*float64(units), salvage)
		out = append(out, bv)
	}
	return out
}
