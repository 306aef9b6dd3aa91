package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"assetfin-backend/internal/domain/asset"
	domain "assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/infrastructure/cache"
	"assetfin-backend/internal/testutil/valuationmock"
	apperr "assetfin-backend/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const owner = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2025, time.March, 17, 9, 30, 0, 0, time.UTC)

func rec(assetID string, y int, m time.Month, fmv float64) domain.EquipmentValuation {
	return domain.EquipmentValuation{
		AssetID:                        assetID,
		AdjustedFairMarketValue:        fmv,
		AdjustedForcedLiquidationValue: fmv / 4,
		ValuationDate:                  time.Date(y, m, 2, 0, 0, 0, 0, time.UTC),
	}
}

func newSeriesCache(t *testing.T) *cache.SeriesCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewSeriesCache(rdb, time.Minute)
}

func TestTotalFairMarketValue_CachedUntilInvalidated(t *testing.T) {
	calls := 0
	records := []domain.EquipmentValuation{
		rec("a", 2024, time.March, 100),
		rec("a", 2025, time.March, 150),
	}
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(_ context.Context, got string) ([]domain.EquipmentValuation, error) {
			if got != owner {
				t.Fatalf("owner = %s", got)
			}
			calls++
			return records, nil
		},
	}
	uc := NewUsecase(repo, WithCache(newSeriesCache(t)))
	ctx := context.Background()

	series, err := uc.TotalFairMarketValue(ctx, owner)
	if err != nil {
		t.Fatalf("TotalFairMarketValue: %v", err)
	}
	if len(series) != 2 || series[1].TotalValue != 150 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if _, err := uc.TotalFairMarketValue(ctx, owner); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("repo hit %d times, want 1", calls)
	}

	uc.InvalidateOwner(ctx, owner)
	if _, err := uc.TotalFairMarketValue(ctx, owner); err != nil {
		t.Fatalf("after invalidate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("repo hit %d times after invalidate, want 2", calls)
	}
}

func TestTotalAssetValue(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(context.Context, string) ([]domain.EquipmentValuation, error) {
			return []domain.EquipmentValuation{
				rec("a", 2024, time.April, 200),
				rec("b", 2024, time.April, 200),
				rec("a", 2025, time.March, 500),
			}, nil
		},
	}
	got, err := NewUsecase(repo).TotalAssetValue(context.Background(), owner)
	if err != nil {
		t.Fatalf("TotalAssetValue: %v", err)
	}
	if got.TotalAssetValue != 500 || got.PercentChangePastYear != 25 {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestTotalAssetValue_NoData(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(context.Context, string) ([]domain.EquipmentValuation, error) { return nil, nil },
	}
	_, err := NewUsecase(repo).TotalAssetValue(context.Background(), owner)
	if !apperr.IsCode(err, apperr.CodeNoData) {
		t.Fatalf("want NO_DATA, got %v", err)
	}
}

func TestAdjustedForcedLiquidation(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(context.Context, string) ([]domain.EquipmentValuation, error) {
			return []domain.EquipmentValuation{rec("z", 2025, time.January, 400), rec("m", 2025, time.February, 80)}, nil
		},
	}
	got, err := NewUsecase(repo).AdjustedForcedLiquidation(context.Background(), owner)
	if err != nil {
		t.Fatalf("AdjustedForcedLiquidation: %v", err)
	}
	if len(got) != 2 || got[0].AssetID != "m" || got[0].AdjustedForcedLiquidationValue != 20 || got[1].ValuationDate != "2025-01-02" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestMonthlyTotals_MetricsCachedApart(t *testing.T) {
	calls := 0
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(context.Context, string) ([]domain.EquipmentValuation, error) {
			calls++
			return []domain.EquipmentValuation{rec("a", 2025, time.March, 400)}, nil
		},
	}
	uc := NewUsecase(repo, WithCache(newSeriesCache(t)))
	ctx := context.Background()

	fmv, err := uc.MonthlyTotals(ctx, owner, "")
	if err != nil || len(fmv) != 1 || fmv[0].TotalValue != 400 {
		t.Fatalf("fmv: %v %+v", err, fmv)
	}
	flv, err := uc.MonthlyTotals(ctx, owner, domain.MetricAdjustedFLV)
	if err != nil || len(flv) != 1 || flv[0].TotalValue != 100 {
		t.Fatalf("flv: %v %+v", err, flv)
	}
	if _, err := uc.TotalFairMarketValue(ctx, owner); err != nil {
		t.Fatalf("TotalFairMarketValue: %v", err)
	}
	if calls != 2 {
		t.Fatalf("repo hit %d times, want 2", calls)
	}
}

func TestMonthlyTotals_UnknownMetric(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByOwnerFn: func(context.Context, string) ([]domain.EquipmentValuation, error) {
			t.Fatal("repo must not be read")
			return nil, nil
		},
	}
	_, err := NewUsecase(repo).MonthlyTotals(context.Background(), owner, "resale")
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("want VALIDATION, got %v", err)
	}
}

func TestVehicleTradeInTotals(t *testing.T) {
	repo := &valuationmock.Repo{
		ListVehicleByOwnerFn: func(context.Context, string) ([]domain.VehicleValuation, error) {
			at := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
			return []domain.VehicleValuation{
				{AssetID: "t1", AdjustedTradeIn: 20_000, AdjustedRetail: 99, ValuationDate: at},
				{AssetID: "t2", AdjustedTradeIn: 5_000, ValuationDate: at},
			}, nil
		},
	}
	got, err := NewUsecase(repo).VehicleTradeInTotals(context.Background(), owner)
	if err != nil {
		t.Fatalf("VehicleTradeInTotals: %v", err)
	}
	if len(got) != 1 || got[0].TotalValue != 25_000 || got[0].AssetCount != 2 || got[0].Month != "February" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestAssetHistory(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByAssetFn: func(_ context.Context, o, a string) ([]domain.EquipmentValuation, error) {
			if o != owner || a != "a1" {
				t.Fatalf("scope = %s/%s", o, a)
			}
			return []domain.EquipmentValuation{rec("a1", 2025, time.January, 10), rec("a1", 2025, time.February, 12)}, nil
		},
		ListVehicleByAssetFn: func(context.Context, string, string) ([]domain.VehicleValuation, error) { return nil, nil },
	}
	got, err := NewUsecase(repo).AssetHistory(context.Background(), owner, "a1")
	if err != nil {
		t.Fatalf("AssetHistory: %v", err)
	}
	if got.AssetID != "a1" || len(got.Equipment) != 2 || got.Vehicle == nil || len(got.Vehicle) != 0 {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestAssetHistory_NoData(t *testing.T) {
	repo := &valuationmock.Repo{
		ListEquipmentByAssetFn: func(context.Context, string, string) ([]domain.EquipmentValuation, error) { return nil, nil },
		ListVehicleByAssetFn:   func(context.Context, string, string) ([]domain.VehicleValuation, error) { return nil, nil },
	}
	_, err := NewUsecase(repo).AssetHistory(context.Background(), owner, "gone")
	if !apperr.IsCode(err, apperr.CodeNoData) {
		t.Fatalf("want NO_DATA, got %v", err)
	}
}

func TestRecord_ByAssetType(t *testing.T) {
	var eq *domain.EquipmentValuation
	var veh *domain.VehicleValuation
	repo := &valuationmock.Repo{
		InsertEquipmentFn: func(_ context.Context, v *domain.EquipmentValuation) error { eq = v; return nil },
		InsertVehicleFn:   func(_ context.Context, v *domain.VehicleValuation) error { veh = v; return nil },
	}
	var gotDesc domain.Descriptor
	prov := &valuationmock.Provider{
		EquipmentValuationFn: func(_ context.Context, d domain.Descriptor) (*domain.EquipmentValuation, error) {
			gotDesc = d
			return &domain.EquipmentValuation{AdjustedFairMarketValue: 90}, nil
		},
		VehicleValuationFn: func(context.Context, domain.Descriptor) (*domain.VehicleValuation, error) {
			return &domain.VehicleValuation{AdjustedTradeIn: 7}, nil
		},
	}
	uc := NewUsecase(repo, WithProvider(prov), WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	a := &asset.Asset{AssetID: "A1", OwnerID: owner, Type: asset.TypeEquipment, Manufacturer: "Deere", Usage: 1500, State: "TX"}
	if err := uc.Record(ctx, a); err != nil {
		t.Fatalf("Record equipment: %v", err)
	}
	if eq == nil || eq.AssetID != "A1" || !eq.ValuationDate.Equal(fixedNow) || eq.AdjustedFairMarketValue != 90 {
		t.Fatalf("equipment record: %+v", eq)
	}
	if gotDesc.Usage != "1500" || gotDesc.Region != "TX" || gotDesc.Manufacturer != "Deere" {
		t.Fatalf("descriptor: %+v", gotDesc)
	}

	a.Type = asset.TypeVehicle
	if err := uc.Record(ctx, a); err != nil {
		t.Fatalf("Record vehicle: %v", err)
	}
	if veh == nil || veh.AdjustedTradeIn != 7 {
		t.Fatalf("vehicle record: %+v", veh)
	}
}

func TestRecord_ProviderFailureNotStored(t *testing.T) {
	boom := errors.New("upstream down")
	repo := &valuationmock.Repo{
		InsertEquipmentFn: func(context.Context, *domain.EquipmentValuation) error {
			t.Fatalf("nothing should be stored")
			return nil
		},
	}
	prov := &valuationmock.Provider{
		EquipmentValuationFn: func(context.Context, domain.Descriptor) (*domain.EquipmentValuation, error) { return nil, boom },
	}
	err := NewUsecase(repo, WithProvider(prov)).Record(context.Background(), &asset.Asset{AssetID: "A", Type: asset.TypeEquipment})
	if !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}

	if err := NewUsecase(repo).Record(context.Background(), &asset.Asset{Type: asset.TypeEquipment}); err == nil {
		t.Fatalf("want error without provider")
	}
}
