package valuation

import "context"

type Repository interface {
	InsertEquipment(ctx context.Context, v *EquipmentValuation) error
	InsertVehicle(ctx context.Context, v *VehicleValuation) error
	ListEquipmentByOwner(ctx context.Context, ownerID string) ([]EquipmentValuation, error)
	ListVehicleByOwner(ctx context.Context, ownerID string) ([]VehicleValuation, error)
	// by-asset reads are scoped to ownerID's live assets
	ListEquipmentByAsset(ctx context.Context, ownerID, assetID string) ([]EquipmentValuation, error)
	ListVehicleByAsset(ctx context.Context, ownerID, assetID string) ([]VehicleValuation, error)
}
