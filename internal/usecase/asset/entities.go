package asset

import domain "assetfin-backend/internal/domain/asset"

// UpsertAssetInput is the body of both create and update. Method parameters
// the chosen method does not use are ignored and stored as zero.
type UpsertAssetInput struct {
	OwnerID      string  `json:"owner_id" validate:"required,hex32"`
	Type         string  `json:"type" validate:"required,assettype"`
	BookValue    float64 `json:"book_value" validate:"gte=0,dec2"`
	SalvageValue float64 `json:"salvage_value" validate:"gte=0,dec2"`

	Manufacturer string `json:"manufacturer" validate:"required,max=128"`
	Model        string `json:"model" validate:"required,max=128"`
	ModelYear    string `json:"model_year" validate:"required,numeric,len=4"`
	Usage        int64  `json:"usage" validate:"gte=0"`
	Condition    string `json:"condition" validate:"max=32"`
	Country      string `json:"country" validate:"max=64"`
	State        string `json:"state" validate:"max=64"`

	DepreciationMethod string  `json:"depreciation_method" validate:"required,depmethod"`
	UsefulLife         int     `json:"useful_life" validate:"gte=0,lte=100"`
	DepreciationRate   float64 `json:"depreciation_rate" validate:"gte=0,lte=1"`
	TotalExpectedUnits int64   `json:"total_expected_units" validate:"gte=0"`
	UnitsPerYear       int64   `json:"units_per_year" validate:"gte=0"`
}

func (in UpsertAssetInput) params() domain.Params {
	return domain.Params{
		UsefulLife:   in.UsefulLife,
		Rate:         in.DepreciationRate,
		TotalUnits:   in.TotalExpectedUnits,
		UnitsPerYear: in.UnitsPerYear,
	}
}

// apply copies the descriptive fields of in onto a.
func (in UpsertAssetInput) apply(a *domain.Asset) {
	a.OwnerID = in.OwnerID
	a.Type = domain.Type(in.Type)
	a.BookValue = in.BookValue
	a.SalvageValue = in.SalvageValue
	a.Manufacturer = in.Manufacturer
	a.Model = in.Model
	a.ModelYear = in.ModelYear
	a.Usage = in.Usage
	a.Condition = in.Condition
	a.Country = in.Country
	a.State = in.State
}

type AssetDTO struct {
	*domain.Asset
	DepreciationSchedule []domain.DepreciationPoint `json:"depreciation_schedule"`
}
