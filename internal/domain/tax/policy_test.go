package tax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, time.March, 17, 9, 30, 0, 0, time.UTC)

func TestBook_ForYear(t *testing.T) {
	b := DefaultBook()

	p, ok := b.ForYear(2024)
	assert.True(t, ok)
	assert.Equal(t, 1_220_000.0, p.Section179Limit)
	assert.Equal(t, 60.0, p.BonusDepreciationPercent)

	p, ok = b.ForYear(2031)
	assert.False(t, ok)
	assert.Equal(t, 2025, p.Year, "unknown years fall back to the latest policy")

	_, ok = Book{}.ForYear(2025)
	assert.False(t, ok)
}

func TestPolicy_MarginalRate(t *testing.T) {
	p, _ := DefaultBook().ForYear(2025)
	cases := []struct {
		income float64
		want   float64
	}{
		{0, 0.10},
		{11_925, 0.10},
		{11_926, 0.12},
		{50_000, 0.22},
		{250_525, 0.32},
		{1_000_000, 0.37},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.MarginalRate(c.income), "income %v", c.income)
	}
}

func TestPolicy_Section179Phaseout(t *testing.T) {
	p, _ := DefaultBook().ForYear(2025)
	assert.Equal(t, 1_250_000.0, p.Section179Available(3_000_000))
	assert.Equal(t, 1_180_000.0, p.Section179Available(3_200_000))
	assert.Equal(t, 0.0, p.Section179Available(10_000_000))
}

func TestPolicy_MACRSFirstYearRate(t *testing.T) {
	p, _ := DefaultBook().ForYear(2025)
	assert.Equal(t, 0.1429, p.MACRSFirstYearRate(7))
	assert.Equal(t, 0.20, p.MACRSFirstYearRate(5))
	assert.Equal(t, 0.20, p.MACRSFirstYearRate(3))
	assert.Equal(t, 0.0, Policy{}.MACRSFirstYearRate(5))
}
