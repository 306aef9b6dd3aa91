package valuation

import "context"

// Descriptor identifies the asset being appraised.
type Descriptor struct {
	Manufacturer string
	Model        string
	ModelYear    string
	Usage        string
	Condition    string
	Country      string
	Region       string
}

// Provider fetches market facets for an asset. The returned record has no
// asset reference or timestamp; callers fill those in before storing it.
type Provider interface {
	EquipmentValuation(ctx context.Context, d Descriptor) (*EquipmentValuation, error)
	VehicleValuation(ctx context.Context, d Descriptor) (*VehicleValuation, error)
}
