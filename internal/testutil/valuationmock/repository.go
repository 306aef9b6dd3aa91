package valuationmock

import (
	"context"
	"errors"

	domain "assetfin-backend/internal/domain/valuation"
)

var (
	_ domain.Repository = (*Repo)(nil)
	_ domain.Provider   = (*Provider)(nil)
)

var errUnimplemented = errors.New("valuationmock: method not implemented")

type Repo struct {
	InsertEquipmentFn      func(ctx context.Context, v *domain.EquipmentValuation) error
	InsertVehicleFn        func(ctx context.Context, v *domain.VehicleValuation) error
	ListEquipmentByOwnerFn func(ctx context.Context, ownerID string) ([]domain.EquipmentValuation, error)
	ListVehicleByOwnerFn   func(ctx context.Context, ownerID string) ([]domain.VehicleValuation, error)
	ListEquipmentByAssetFn func(ctx context.Context, ownerID, assetID string) ([]domain.EquipmentValuation, error)
	ListVehicleByAssetFn   func(ctx context.Context, ownerID, assetID string) ([]domain.VehicleValuation, error)
}

func (m *Repo) InsertEquipment(ctx context.Context, v *domain.EquipmentValuation) error {
	if m.InsertEquipmentFn != nil {
		return m.InsertEquipmentFn(ctx, v)
	}
	return nil
}

func (m *Repo) InsertVehicle(ctx context.Context, v *domain.VehicleValuation) error {
	if m.InsertVehicleFn != nil {
		return m.InsertVehicleFn(ctx, v)
	}
	return nil
}

func (m *Repo) ListEquipmentByOwner(ctx context.Context, ownerID string) ([]domain.EquipmentValuation, error) {
	if m.ListEquipmentByOwnerFn != nil {
		return m.ListEquipmentByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListVehicleByOwner(ctx context.Context, ownerID string) ([]domain.VehicleValuation, error) {
	if m.ListVehicleByOwnerFn != nil {
		return m.ListVehicleByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListEquipmentByAsset(ctx context.Context, ownerID, assetID string) ([]domain.EquipmentValuation, error) {
	if m.ListEquipmentByAssetFn != nil {
		return m.ListEquipmentByAssetFn(ctx, ownerID, assetID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListVehicleByAsset(ctx context.Context, ownerID, assetID string) ([]domain.VehicleValuation, error) {
	if m.ListVehicleByAssetFn != nil {
		return m.ListVehicleByAssetFn(ctx, ownerID, assetID)
	}
	return nil, errUnimplemented
}

// Provider is a function-backed domain.Provider.
type Provider struct {
	EquipmentValuationFn func(ctx context.Context, d domain.Descriptor) (*domain.EquipmentValuation, error)
	VehicleValuationFn   func(ctx context.Context, d domain.Descriptor) (*domain.VehicleValuation, error)
}

func (p *Provider) EquipmentValuation(ctx context.Context, d domain.Descriptor) (*domain.EquipmentValuation, error) {
	if p.EquipmentValuationFn != nil {
		return p.EquipmentValuationFn(ctx, d)
	}
	return nil, errUnimplemented
}

func (p *Provider) VehicleValuation(ctx context.Context, d domain.Descriptor) (*domain.VehicleValuation, error) {
	if p.VehicleValuationFn != nil {
		return p.VehicleValuationFn(ctx, d)
	}
	return nil, errUnimplemented
}
