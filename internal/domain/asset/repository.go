package asset

import "context"

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	Save(ctx context.Context, a *Asset) error
	SoftDelete(ctx context.Context, a *Asset) error
	GetByAssetID(ctx context.Context, assetID string) (*Asset, error)
	// row-locked read, only meaningful inside a unit of work
	GetByAssetIDForUpdate(ctx context.Context, assetID string) (*Asset, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Asset, error)
	ListActive(ctx context.Context) ([]Asset, error)
	FindDuplicate(ctx context.Context, a *Asset) (*Asset, error)

	InsertSchedule(ctx context.Context, points []DepreciationPoint) error
	DeleteSchedule(ctx context.Context, assetRef uint64) error
	// ReplaceSchedule deletes every point of assetRef and inserts points as one
	// atomic step.
	ReplaceSchedule(ctx context.Context, assetRef uint64, points []DepreciationPoint) error
	GetSchedule(ctx context.Context, assetRef uint64) ([]DepreciationPoint, error)
	ListSchedules(ctx context.Context, assetRefs []uint64) (map[uint64][]DepreciationPoint, error)
}
