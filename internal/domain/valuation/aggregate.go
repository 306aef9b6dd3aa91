package valuation

import (
	"math"
	"sort"
	"time"

	"assetfin-backend/pkg/date"
	apperr "assetfin-backend/pkg/errors"
)

const DefaultWindowMonths = 12

// Record is anything carrying an asset reference and a valuation time.
type Record interface {
	Asset() string
	ValuedAt() time.Time
}

// Metric selectors over equipment facets.
var (
	AdjustedFairMarketValue         = func(v EquipmentValuation) float64 { return v.AdjustedFairMarketValue }
	AdjustedForcedLiquidationValue  = func(v EquipmentValuation) float64 { return v.AdjustedForcedLiquidationValue }
	AdjustedOrderlyLiquidationValue = func(v EquipmentValuation) float64 { return v.AdjustedOrderlyLiquidationValue }
	UnadjustedFairMarketValue       = func(v EquipmentValuation) float64 { return v.UnadjustedFairMarketValue }
)

// AdjustedTradeIn is the headline vehicle facet.
var AdjustedTradeIn = func(v VehicleValuation) float64 { return v.AdjustedTradeIn }

// Metric names accepted on the wire.
const (
	MetricAdjustedFMV   = "adjusted_fmv"
	MetricAdjustedFLV   = "adjusted_flv"
	MetricAdjustedOLV   = "adjusted_olv"
	MetricUnadjustedFMV = "unadjusted_fmv"
)

var equipmentMetrics = map[string]func(EquipmentValuation) float64{
	MetricAdjustedFMV:   AdjustedFairMarketValue,
	MetricAdjustedFLV:   AdjustedForcedLiquidationValue,
	MetricAdjustedOLV:   AdjustedOrderlyLiquidationValue,
	MetricUnadjustedFMV: UnadjustedFairMarketValue,
}

// EquipmentMetric resolves a metric name; empty means adjusted FMV.
func EquipmentMetric(name string) (func(EquipmentValuation) float64, error) {
	if name == "" {
		name = MetricAdjustedFMV
	}
	m, ok := equipmentMetrics[name]
	if !ok {
		return nil, apperr.Newf(apperr.CodeValidation, "unknown metric %q", name).
			WithDetail("metric must be one of adjusted_fmv, adjusted_flv, adjusted_olv, unadjusted_fmv")
	}
	return m, nil
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

// AggregateMonthlyTotals sums metric per calendar month and counts distinct
// assets per month. Only the newest windowMonths months are kept, returned
// oldest first. Records without a timestamp are skipped.
func AggregateMonthlyTotals[R Record](records []R, metric func(R) float64, windowMonths int) []MonthlyTotal {
	if windowMonths <= 0 {
		windowMonths = DefaultWindowMonths
	}

	type bucket struct {
		total  float64
		assets map[string]struct{}
	}
	buckets := make(map[monthKey]*bucket)
	for _, r := range records {
		ts := r.ValuedAt()
		if ts.IsZero() {
			continue
		}
		k := monthKey{ts.Year(), ts.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{assets: make(map[string]struct{})}
			buckets[k] = b
		}
		b.total += metric(r)
		b.assets[r.Asset()] = struct{}{}
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// newest first, cut the window, then back to chronological order
	sort.Slice(keys, func(i, j int) bool { return keys[j].before(keys[i]) })
	if len(keys) > windowMonths {
		keys = keys[:windowMonths]
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	out := make([]MonthlyTotal, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, MonthlyTotal{
			Year:        k.year,
			MonthNumber: int(k.month),
			Month:       k.month.String(),
			TotalValue:  b.total,
			AssetCount:  len(b.assets),
		})
	}
	return out
}

// TotalAssetValueWithYoYChange reports the newest month's total and the
// percent change from the oldest month in series, rounded half to even.
func TotalAssetValueWithYoYChange(series []MonthlyTotal) (*TotalAssetValue, error) {
	if len(series) == 0 {
		return nil, apperr.New(apperr.CodeNoData, "no valuation history")
	}
	first := series[0].TotalValue
	last := series[len(series)-1].TotalValue

	pct := 0
	if first != 0 {
		pct = int(math.RoundToEven((last - first) / first * 100))
	}
	return &TotalAssetValue{TotalAssetValue: last, PercentChangePastYear: pct}, nil
}

type DatedValue struct {
	Date  time.Time
	Value float64
}

// CurrentPeriodValue picks the latest value dated in now's calendar month,
// or fallback when there is none.
func CurrentPeriodValue(points []DatedValue, now time.Time, fallback float64) float64 {
	now = now.UTC()
	var latest time.Time
	found := false
	out := fallback
	for _, p := range points {
		if !date.SameMonth(p.Date.UTC(), now) {
			continue
		}
		if !found || p.Date.After(latest) {
			latest, found = p.Date, true
			out = p.Value
		}
	}
	return out
}

// ForcedLiquidationList projects equipment records to their adjusted forced
// liquidation value, ordered by asset id.
func ForcedLiquidationList(records []EquipmentValuation) []ForcedLiquidation {
	out := make([]ForcedLiquidation, 0, len(records))
	for _, r := range records {
		out = append(out, ForcedLiquidation{
			AssetID:                        r.AssetID,
			ValuationDate:                  date.Format(r.ValuationDate),
			AdjustedForcedLiquidationValue: r.AdjustedForcedLiquidationValue,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}
