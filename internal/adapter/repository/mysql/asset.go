package mysql

import (
	"context"
	"errors"

	assetDomain "assetfin-backend/internal/domain/asset"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const scheduleBatchSize = 200

type AssetRepository struct{ db *gorm.DB }

func NewAssetRepository(db *gorm.DB) *AssetRepository { return &AssetRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *AssetRepository) Tx(ctx context.Context, fn func(repo assetDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AssetRepository{db: tx})
	})
}

func (r *AssetRepository) Create(ctx context.Context, a *assetDomain.Asset) error {
	return dbErr(r.db.WithContext(ctx).Create(a).Error, "create asset")
}

func (r *AssetRepository) Save(ctx context.Context, a *assetDomain.Asset) error {
	return dbErr(r.db.WithContext(ctx).Save(a).Error, "save asset")
}

func (r *AssetRepository) SoftDelete(ctx context.Context, a *assetDomain.Asset) error {
	return dbErr(r.db.WithContext(ctx).Delete(a).Error, "delete asset")
}

func (r *AssetRepository) GetByAssetID(ctx context.Context, assetID string) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	res := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&out)
	return &out, dbErr(res.Error, "asset")
}

func (r *AssetRepository) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("asset_id = ?", assetID).
		First(&out)
	return &out, dbErr(res.Error, "asset")
}

func (r *AssetRepository) ListByOwner(ctx context.Context, ownerID string) ([]assetDomain.Asset, error) {
	var out []assetDomain.Asset
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&out)
	return out, dbErr(res.Error, "list assets")
}

func (r *AssetRepository) ListActive(ctx context.Context) ([]assetDomain.Asset, error) {
	var out []assetDomain.Asset
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, dbErr(res.Error, "list assets")
}

// FindDuplicate returns another live asset of the same owner with the same
// manufacturer, model and model year, or nil.
func (r *AssetRepository) FindDuplicate(ctx context.Context, a *assetDomain.Asset) (*assetDomain.Asset, error) {
	var out assetDomain.Asset
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND manufacturer = ? AND model = ? AND model_year = ? AND asset_id <> ?",
			a.OwnerID, a.Manufacturer, a.Model, a.ModelYear, a.AssetID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if res.Error != nil {
		return nil, dbErr(res.Error, "find duplicate asset")
	}
	return &out, nil
}

func (r *AssetRepository) InsertSchedule(ctx context.Context, points []assetDomain.DepreciationPoint) error {
	if len(points) == 0 {
		return nil
	}
	return dbErr(r.db.WithContext(ctx).CreateInBatches(points, scheduleBatchSize).Error, "insert depreciation schedule")
}

func (r *AssetRepository) DeleteSchedule(ctx context.Context, assetRef uint64) error {
	res := r.db.WithContext(ctx).Where("asset_ref = ?", assetRef).Delete(&assetDomain.DepreciationPoint{})
	return dbErr(res.Error, "delete depreciation schedule")
}

func (r *AssetRepository) ReplaceSchedule(ctx context.Context, assetRef uint64, points []assetDomain.DepreciationPoint) error {
	return r.Tx(ctx, func(repo assetDomain.Repository) error {
		if err := repo.DeleteSchedule(ctx, assetRef); err != nil {
			return err
		}
		for i := range points {
			points[i].ID = 0
			points[i].AssetRef = assetRef
		}
		return repo.InsertSchedule(ctx, points)
	})
}

func (r *AssetRepository) GetSchedule(ctx context.Context, assetRef uint64) ([]assetDomain.DepreciationPoint, error) {
	var out []assetDomain.DepreciationPoint
	res := r.db.WithContext(ctx).Where("asset_ref = ?", assetRef).Order("depreciation_date ASC").Find(&out)
	return out, dbErr(res.Error, "depreciation schedule")
}

func (r *AssetRepository) ListSchedules(ctx context.Context, assetRefs []uint64) (map[uint64][]assetDomain.DepreciationPoint, error) {
	out := make(map[uint64][]assetDomain.DepreciationPoint, len(assetRefs))
	if len(assetRefs) == 0 {
		return out, nil
	}
	var rows []assetDomain.DepreciationPoint
	res := r.db.WithContext(ctx).
		Where("asset_ref IN ?", assetRefs).
		Order("asset_ref ASC, depreciation_date ASC").
		Find(&rows)
	if res.Error != nil {
		return nil, dbErr(res.Error, "depreciation schedules")
	}
	for _, p := range rows {
		out[p.AssetRef] = append(out[p.AssetRef], p)
	}
	return out, nil
}
