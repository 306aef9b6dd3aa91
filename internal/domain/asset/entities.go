package asset

import (
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeEquipment Type = "Equipment"
	TypeVehicle   Type = "Vehicle"
)

func (t Type) Valid() bool { return t == TypeEquipment || t == TypeVehicle }

type Asset struct {
	ID           uint64  `gorm:"primaryKey;column:id" json:"-"`
	AssetID      string  `gorm:"size:32;uniqueIndex:ux_assets_asset_id" json:"asset_id"`
	OwnerID      string  `gorm:"size:32;index:idx_assets_owner" json:"owner_id"`
	Type         Type    `gorm:"size:16" json:"type"`
	BookValue    float64 `gorm:"type:decimal(18,2)" json:"book_value"`
	SalvageValue float64 `gorm:"type:decimal(18,2)" json:"salvage_value"`

	Manufacturer string `gorm:"size:128" json:"manufacturer"`
	Model        string `gorm:"size:128" json:"model"`
	ModelYear    string `gorm:"size:8" json:"model_year"`
	Usage        int64  `json:"usage"`
	Condition    string `gorm:"size:32" json:"condition"`
	Country      string `gorm:"size:64" json:"country"`
	State        string `gorm:"size:64" json:"state"`

	DepreciationMethod Method  `gorm:"size:32" json:"depreciation_method"`
	UsefulLife         int     `json:"useful_life"`
	DepreciationRate   float64 `gorm:"type:decimal(10,6)" json:"depreciation_rate"`
	TotalExpectedUnits int64   `json:"total_expected_units"`
	UnitsPerYear       int64   `json:"units_per_year"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Asset) TableName() string { return "assets" }

// Params returns the method parameters stored on the asset.
func (a *Asset) Params() Params {
	return Params{
		UsefulLife:   a.UsefulLife,
		Rate:         a.DepreciationRate,
		TotalUnits:   a.TotalExpectedUnits,
		UnitsPerYear: a.UnitsPerYear,
	}
}

// SetParams stores p on the asset.
func (a *Asset) SetParams(p Params) {
	a.UsefulLife = p.UsefulLife
	a.DepreciationRate = p.Rate
	a.TotalExpectedUnits = p.TotalUnits
	a.UnitsPerYear = p.UnitsPerYear
}

// DepreciationPoint is one month of an asset's book value trajectory.
// AssetRef points at Asset.ID.
type DepreciationPoint struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	AssetRef  uint64    `gorm:"column:asset_ref;index:idx_dep_asset_date,priority:1" json:"-"`
	Date      string    `gorm:"column:depreciation_date;size:10;index:idx_dep_asset_date,priority:2" json:"depreciation_date"`
	BookValue float32   `gorm:"column:new_book_value" json:"new_book_value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (DepreciationPoint) TableName() string { return "asset_depreciation_schedules" }
