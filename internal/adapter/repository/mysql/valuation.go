package mysql

import (
	"context"

	valuationDomain "assetfin-backend/internal/domain/valuation"

	"gorm.io/gorm"
)

type ValuationRepository struct{ db *gorm.DB }

func NewValuationRepository(db *gorm.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

func (r *ValuationRepository) InsertEquipment(ctx context.Context, v *valuationDomain.EquipmentValuation) error {
	return dbErr(r.db.WithContext(ctx).Create(v).Error, "insert equipment valuation")
}

func (r *ValuationRepository) InsertVehicle(ctx context.Context, v *valuationDomain.VehicleValuation) error {
	return dbErr(r.db.WithContext(ctx).Create(v).Error, "insert vehicle valuation")
}

// ownedAssets selects the public ids of ownerID's live assets.
func (r *ValuationRepository) ownedAssets(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("assets").
		Select("asset_id").
		Where("owner_id = ? AND deleted_at IS NULL", ownerID)
}

func (r *ValuationRepository) ListEquipmentByOwner(ctx context.Context, ownerID string) ([]valuationDomain.EquipmentValuation, error) {
	var out []valuationDomain.EquipmentValuation
	res := r.db.WithContext(ctx).
		Where("asset_id IN (?)", r.ownedAssets(ctx, ownerID)).
		Order("valuation_date ASC, log_id ASC").
		Find(&out)
	return out, dbErr(res.Error, "equipment valuations")
}

func (r *ValuationRepository) ListVehicleByOwner(ctx context.Context, ownerID string) ([]valuationDomain.VehicleValuation, error) {
	var out []valuationDomain.VehicleValuation
	res := r.db.WithContext(ctx).
		Where("asset_id IN (?)", r.ownedAssets(ctx, ownerID)).
		Order("valuation_date ASC, log_id ASC").
		Find(&out)
	return out, dbErr(res.Error, "vehicle valuations")
}

func (r *ValuationRepository) ListEquipmentByAsset(ctx context.Context, ownerID, assetID string) ([]valuationDomain.EquipmentValuation, error) {
	var out []valuationDomain.EquipmentValuation
	res := r.db.WithContext(ctx).
		Where("asset_id = ? AND asset_id IN (?)", assetID, r.ownedAssets(ctx, ownerID)).
		Order("valuation_date ASC, log_id ASC").
		Find(&out)
	return out, dbErr(res.Error, "equipment valuations")
}

func (r *ValuationRepository) ListVehicleByAsset(ctx context.Context, ownerID, assetID string) ([]valuationDomain.VehicleValuation, error) {
	var out []valuationDomain.VehicleValuation
	res := r.db.WithContext(ctx).
		Where("asset_id = ? AND asset_id IN (?)", assetID, r.ownedAssets(ctx, ownerID)).
		Order("valuation_date ASC, log_id ASC").
		Find(&out)
	return out, dbErr(res.Error, "vehicle valuations")
}
