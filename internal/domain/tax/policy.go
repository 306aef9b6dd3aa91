// Package tax holds the versioned federal rules the liquidation and
// replacement scenarios are priced with.
package tax

import (
	"math"
	"sort"
	"time"

	"assetfin-backend/internal/domain/asset"
)

// Bracket is one step of the ordinary income table. A zero Limit is the open
// top bracket.
type Bracket struct {
	Limit float64 `json:"limit"`
	Rate  float64 `json:"rate"`
}

type Policy struct {
	Year                        int       `json:"effective_year"`
	Section179Limit             float64   `json:"section_179_limit"`
	Section179PhaseoutThreshold float64   `json:"section_179_phaseout_threshold"`
	BonusDepreciationPercent    float64   `json:"bonus_depreciation_percent"`
	Brackets                    []Bracket `json:"tax_brackets"`
	MACRS5Year                  []float64 `json:"macrs_5_year"`
	MACRS7Year                  []float64 `json:"macrs_7_year"`
	Source                      string    `json:"policy_source"`
}

var macrs7 = []float64{0.1429, 0.2449, 0.1749, 0.1249, 0.0893, 0.0892, 0.0893, 0.0446}

// Book maps tax years to their policy.
type Book map[int]Policy

// DefaultBook returns the rules for the years the service knows about.
func DefaultBook() Book {
	return Book{
		2024: {
			Year:                        2024,
			Section179Limit:             1_220_000,
			Section179PhaseoutThreshold: 3_050_000,
			BonusDepreciationPercent:    60,
			Brackets: []Bracket{
				{11_600, 0.10}, {47_150, 0.12}, {100_525, 0.22}, {191_950, 0.24},
				{243_725, 0.32}, {609_350, 0.35}, {0, 0.37},
			},
			MACRS5Year: asset.MACRSRates(),
			MACRS7Year: macrs7,
			Source:     "IRS Rev. Proc. 2023-34",
		},
		2025: {
			Year:                        2025,
			Section179Limit:             1_250_000,
			Section179PhaseoutThreshold: 3_130_000,
			BonusDepreciationPercent:    40,
			Brackets: []Bracket{
				{11_925, 0.10}, {48_475, 0.12}, {103_350, 0.22}, {197_300, 0.24},
				{250_525, 0.32}, {626_350, 0.35}, {0, 0.37},
			},
			MACRS5Year: asset.MACRSRates(),
			MACRS7Year: macrs7,
			Source:     "IRS Rev. Proc. 2024-40 (projected)",
		},
	}
}

// ForYear returns the policy for year. Unknown years get the latest policy
// on file; the bool reports whether year was found.
func (b Book) ForYear(year int) (Policy, bool) {
	if p, ok := b[year]; ok {
		return p, true
	}
	years := make([]int, 0, len(b))
	for y := range b {
		years = append(years, y)
	}
	if len(years) == 0 {
		return Policy{}, false
	}
	sort.Ints(years)
	return b[years[len(years)-1]], false
}

// ForDate is ForYear for t's calendar year.
func (b Book) ForDate(t time.Time) Policy {
	p, _ := b.ForYear(t.Year())
	return p
}

// MarginalRate is the rate of the first bracket reaching income.
func (p Policy) MarginalRate(income float64) float64 {
	for _, br := range p.Brackets {
		if br.Limit == 0 || income <= br.Limit {
			return br.Rate
		}
	}
	if n := len(p.Brackets); n > 0 {
		return p.Brackets[n-1].Rate
	}
	return 0
}

// Section179Available reduces the limit dollar for dollar once purchases pass
// the phaseout threshold.
func (p Policy) Section179Available(purchases float64) float64 {
	over := math.Max(purchases-p.Section179PhaseoutThreshold, 0)
	return math.Max(p.Section179Limit-over, 0)
}

// MACRSFirstYearRate uses the 7-year table for 7-year property and the
// 5-year table for everything else.
func (p Policy) MACRSFirstYearRate(life int) float64 {
	table := p.MACRS5Year
	if life == 7 {
		table = p.MACRS7Year
	}
	if len(table) == 0 {
		return 0
	}
	return table[0]
}
