package assetmock

import (
	"context"
	"errors"

	domain "assetfin-backend/internal/domain/asset"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("assetmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed, unset readers return errUnimplemented.
type Repo struct {
	CreateFn                func(ctx context.Context, a *domain.Asset) error
	SaveFn                  func(ctx context.Context, a *domain.Asset) error
	SoftDeleteFn            func(ctx context.Context, a *domain.Asset) error
	GetByAssetIDFn          func(ctx context.Context, assetID string) (*domain.Asset, error)
	GetByAssetIDForUpdateFn func(ctx context.Context, assetID string) (*domain.Asset, error)
	ListByOwnerFn           func(ctx context.Context, ownerID string) ([]domain.Asset, error)
	ListActiveFn            func(ctx context.Context) ([]domain.Asset, error)
	FindDuplicateFn         func(ctx context.Context, a *domain.Asset) (*domain.Asset, error)

	InsertScheduleFn  func(ctx context.Context, points []domain.DepreciationPoint) error
	DeleteScheduleFn  func(ctx context.Context, assetRef uint64) error
	ReplaceScheduleFn func(ctx context.Context, assetRef uint64, points []domain.DepreciationPoint) error
	GetScheduleFn     func(ctx context.Context, assetRef uint64) ([]domain.DepreciationPoint, error)
	ListSchedulesFn   func(ctx context.Context, assetRefs []uint64) (map[uint64][]domain.DepreciationPoint, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Asset) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Asset) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) SoftDelete(ctx context.Context, a *domain.Asset) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAssetID(ctx context.Context, assetID string) (*domain.Asset, error) {
	if m.GetByAssetIDFn != nil {
		return m.GetByAssetIDFn(ctx, assetID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByAssetIDForUpdate(ctx context.Context, assetID string) (*domain.Asset, error) {
	if m.GetByAssetIDForUpdateFn != nil {
		return m.GetByAssetIDForUpdateFn(ctx, assetID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Asset, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.Asset, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, errUnimplemented
}

// FindDuplicate reports no duplicate when unset.
func (m *Repo) FindDuplicate(ctx context.Context, a *domain.Asset) (*domain.Asset, error) {
	if m.FindDuplicateFn != nil {
		return m.FindDuplicateFn(ctx, a)
	}
	return nil, nil
}

func (m *Repo) InsertSchedule(ctx context.Context, points []domain.DepreciationPoint) error {
	if m.InsertScheduleFn != nil {
		return m.InsertScheduleFn(ctx, points)
	}
	return nil
}

func (m *Repo) DeleteSchedule(ctx context.Context, assetRef uint64) error {
	if m.DeleteScheduleFn != nil {
		return m.DeleteScheduleFn(ctx, assetRef)
	}
	return nil
}

func (m *Repo) ReplaceSchedule(ctx context.Context, assetRef uint64, points []domain.DepreciationPoint) error {
	if m.ReplaceScheduleFn != nil {
		return m.ReplaceScheduleFn(ctx, assetRef, points)
	}
	return nil
}

func (m *Repo) GetSchedule(ctx context.Context, assetRef uint64) ([]domain.DepreciationPoint, error) {
	if m.GetScheduleFn != nil {
		return m.GetScheduleFn(ctx, assetRef)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListSchedules(ctx context.Context, assetRefs []uint64) (map[uint64][]domain.DepreciationPoint, error) {
	if m.ListSchedulesFn != nil {
		return m.ListSchedulesFn(ctx, assetRefs)
	}
	return nil, errUnimplemented
}
