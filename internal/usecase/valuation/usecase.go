package valuation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"assetfin-backend/internal/domain/asset"
	domain "assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/infrastructure/logging"
	apperr "assetfin-backend/pkg/errors"
)

const (
	kindTotalFMV       = "total-fmv"
	kindVehicleTradeIn = "vehicle-trade-in"
)

// SeriesCache is satisfied by cache.SeriesCache.
type SeriesCache interface {
	Remember(ctx context.Context, ownerID, kind string, dest any, load func(ctx context.Context) (any, error)) error
	InvalidateOwner(ctx context.Context, ownerID string) error
}

type Usecase struct {
	repo     domain.Repository
	provider domain.Provider
	cache    SeriesCache
	log      logging.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithProvider(p domain.Provider) Option { return func(u *Usecase) { u.provider = p } }
func WithCache(c SeriesCache) Option        { return func(u *Usecase) { u.cache = c } }
func WithLogger(l logging.Logger) Option    { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(r domain.Repository, opts ...Option) *Usecase {
	u := &Usecase{repo: r, log: logging.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) EquipmentValuations(ctx context.Context, ownerID string) ([]domain.EquipmentValuation, error) {
	return u.repo.ListEquipmentByOwner(ctx, ownerID)
}

func (u *Usecase) VehicleValuations(ctx context.Context, ownerID string) ([]domain.VehicleValuation, error) {
	return u.repo.ListVehicleByOwner(ctx, ownerID)
}

// TotalFairMarketValue is the owner's adjusted FMV per month over the last
// DefaultWindowMonths months that have data, oldest first.
func (u *Usecase) TotalFairMarketValue(ctx context.Context, ownerID string) ([]domain.MonthlyTotal, error) {
	return u.MonthlyTotals(ctx, ownerID, domain.MetricAdjustedFMV)
}

// MonthlyTotals is TotalFairMarketValue over any equipment metric. Each
// metric is cached under its own kind.
func (u *Usecase) MonthlyTotals(ctx context.Context, ownerID, metric string) ([]domain.MonthlyTotal, error) {
	if metric == "" {
		metric = domain.MetricAdjustedFMV
	}
	pick, err := domain.EquipmentMetric(metric)
	if err != nil {
		return nil, err
	}
	kind := kindTotalFMV
	if metric != domain.MetricAdjustedFMV {
		kind += ":" + metric
	}
	return u.cachedSeries(ctx, ownerID, kind, func(ctx context.Context) ([]domain.MonthlyTotal, error) {
		records, err := u.repo.ListEquipmentByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return domain.AggregateMonthlyTotals(records, pick, domain.DefaultWindowMonths), nil
	})
}

// VehicleTradeInTotals sums the adjusted trade-in value of the owner's
// vehicles per month.
func (u *Usecase) VehicleTradeInTotals(ctx context.Context, ownerID string) ([]domain.MonthlyTotal, error) {
	return u.cachedSeries(ctx, ownerID, kindVehicleTradeIn, func(ctx context.Context) ([]domain.MonthlyTotal, error) {
		records, err := u.repo.ListVehicleByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return domain.AggregateMonthlyTotals(records, domain.AdjustedTradeIn, domain.DefaultWindowMonths), nil
	})
}

func (u *Usecase) cachedSeries(ctx context.Context, ownerID, kind string, load func(ctx context.Context) ([]domain.MonthlyTotal, error)) ([]domain.MonthlyTotal, error) {
	if u.cache == nil {
		return load(ctx)
	}
	var out []domain.MonthlyTotal
	err := u.cache.Remember(ctx, ownerID, kind, &out, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssetHistory lists every valuation of one of the owner's live assets.
func (u *Usecase) AssetHistory(ctx context.Context, ownerID, assetID string) (*domain.AssetHistory, error) {
	eq, err := u.repo.ListEquipmentByAsset(ctx, ownerID, assetID)
	if err != nil {
		return nil, err
	}
	veh, err := u.repo.ListVehicleByAsset(ctx, ownerID, assetID)
	if err != nil {
		return nil, err
	}
	if len(eq) == 0 && len(veh) == 0 {
		return nil, apperr.Newf(apperr.CodeNoData, "no valuations for asset %s", assetID)
	}
	if eq == nil {
		eq = []domain.EquipmentValuation{}
	}
	if veh == nil {
		veh = []domain.VehicleValuation{}
	}
	return &domain.AssetHistory{AssetID: assetID, Equipment: eq, Vehicle: veh}, nil
}

func (u *Usecase) TotalAssetValue(ctx context.Context, ownerID string) (*domain.TotalAssetValue, error) {
	series, err := u.TotalFairMarketValue(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.TotalAssetValueWithYoYChange(series)
}

func (u *Usecase) AdjustedForcedLiquidation(ctx context.Context, ownerID string) ([]domain.ForcedLiquidation, error) {
	records, err := u.repo.ListEquipmentByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.ForcedLiquidationList(records), nil
}

// Record fetches fresh facets for a and stores them as a new valuation
// record dated now. The owner's cached series is dropped afterwards.
func (u *Usecase) Record(ctx context.Context, a *asset.Asset) error {
	if u.provider == nil {
		return apperr.New(apperr.CodeInternal, "no valuation provider configured")
	}
	d := descriptorOf(a)
	at := u.now().UTC()

	switch a.Type {
	case asset.TypeEquipment:
		v, err := u.provider.EquipmentValuation(ctx, d)
		if err != nil {
			return fmt.Errorf("equipment valuation for %s: %w", a.AssetID, err)
		}
		v.AssetID, v.ValuationDate, v.LogID = a.AssetID, at, 0
		if err := u.repo.InsertEquipment(ctx, v); err != nil {
			return err
		}
	case asset.TypeVehicle:
		v, err := u.provider.VehicleValuation(ctx, d)
		if err != nil {
			return fmt.Errorf("vehicle valuation for %s: %w", a.AssetID, err)
		}
		v.AssetID, v.ValuationDate, v.LogID = a.AssetID, at, 0
		if err := u.repo.InsertVehicle(ctx, v); err != nil {
			return err
		}
	default:
		return apperr.Newf(apperr.CodeValidation, "unknown asset type %q", a.Type)
	}

	u.InvalidateOwner(ctx, a.OwnerID)
	return nil
}

// InvalidateOwner is best effort; a stale entry expires with its TTL.
func (u *Usecase) InvalidateOwner(ctx context.Context, ownerID string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.InvalidateOwner(ctx, ownerID); err != nil {
		u.log.Warn("series cache invalidation failed", logging.String("owner_id", ownerID), logging.Err(err))
	}
}

func descriptorOf(a *asset.Asset) domain.Descriptor {
	return domain.Descriptor{
		Manufacturer: a.Manufacturer,
		Model:        a.Model,
		ModelYear:    a.ModelYear,
		Usage:        strconv.FormatInt(a.Usage, 10),
		Condition:    a.Condition,
		Country:      a.Country,
		Region:       a.State,
	}
}
