package valuation

import "time"

// EquipmentValuation is one appraisal of an Equipment asset. Missing facets
// are stored as 0.
type EquipmentValuation struct {
	LogID   uint64 `gorm:"primaryKey;column:log_id" json:"log_id"`
	AssetID string `gorm:"size:32;index:idx_evl_asset_date,priority:1" json:"asset_id"`

	UnadjustedFairMarketValue         float64 `gorm:"type:decimal(18,2)" json:"unadjusted_fair_market_value"`
	UnadjustedOrderlyLiquidationValue float64 `gorm:"type:decimal(18,2)" json:"unadjusted_orderly_liquidation_value"`
	UnadjustedForcedLiquidationValue  float64 `gorm:"type:decimal(18,2)" json:"unadjusted_forced_liquidation_value"`
	AdjustedFairMarketValue           float64 `gorm:"type:decimal(18,2)" json:"adjusted_fair_market_value"`
	AdjustedOrderlyLiquidationValue   float64 `gorm:"type:decimal(18,2)" json:"adjusted_orderly_liquidation_value"`
	AdjustedForcedLiquidationValue    float64 `gorm:"type:decimal(18,2)" json:"adjusted_forced_liquidation_value"`
	Salvage                           float64 `gorm:"type:decimal(18,2)" json:"salvage"`

	ValuationDate time.Time `gorm:"index:idx_evl_asset_date,priority:2" json:"valuation_date"`
}

func (EquipmentValuation) TableName() string { return "equipment_valuation_logs" }

func (v EquipmentValuation) Asset() string       { return v.AssetID }
func (v EquipmentValuation) ValuedAt() time.Time { return v.ValuationDate }

type VehicleValuation struct {
	LogID   uint64 `gorm:"primaryKey;column:log_id" json:"log_id"`
	AssetID string `gorm:"size:32;index:idx_vvl_asset_date,priority:1" json:"asset_id"`

	UnadjustedLow       float64 `gorm:"type:decimal(18,2)" json:"unadjusted_low"`
	UnadjustedHigh      float64 `gorm:"type:decimal(18,2)" json:"unadjusted_high"`
	UnadjustedFinance   float64 `gorm:"type:decimal(18,2)" json:"unadjusted_finance"`
	UnadjustedRetail    float64 `gorm:"type:decimal(18,2)" json:"unadjusted_retail"`
	UnadjustedWholesale float64 `gorm:"type:decimal(18,2)" json:"unadjusted_wholesale"`
	UnadjustedTradeIn   float64 `gorm:"type:decimal(18,2)" json:"unadjusted_trade_in"`
	AdjustedLow         float64 `gorm:"type:decimal(18,2)" json:"adjusted_low"`
	AdjustedHigh        float64 `gorm:"type:decimal(18,2)" json:"adjusted_high"`
	AdjustedFinance     float64 `gorm:"type:decimal(18,2)" json:"adjusted_finance"`
	AdjustedRetail      float64 `gorm:"type:decimal(18,2)" json:"adjusted_retail"`
	AdjustedWholesale   float64 `gorm:"type:decimal(18,2)" json:"adjusted_wholesale"`
	AdjustedTradeIn     float64 `gorm:"type:decimal(18,2)" json:"adjusted_trade_in"`

	ValuationDate time.Time `gorm:"index:idx_vvl_asset_date,priority:2" json:"valuation_date"`
}

func (VehicleValuation) TableName() string { return "vehicle_valuation_logs" }

func (v VehicleValuation) Asset() string       { return v.AssetID }
func (v VehicleValuation) ValuedAt() time.Time { return v.ValuationDate }

type MonthlyTotal struct {
	Year        int     `json:"year"`
	MonthNumber int     `json:"month_number"`
	Month       string  `json:"month"`
	TotalValue  float64 `json:"total_fair_market_value"`
	AssetCount  int     `json:"number_of_assets"`
}

type TotalAssetValue struct {
	TotalAssetValue       float64 `json:"total_asset_value"`
	PercentChangePastYear int     `json:"percent_change_past_year"`
}

type ForcedLiquidation struct {
	AssetID                        string  `json:"asset_id"`
	ValuationDate                  string  `json:"valuation_date"`
	AdjustedForcedLiquidationValue float64 `json:"adjusted_forced_liquidation_value"`
}

// AssetHistory is every valuation recorded for one asset, oldest first. Only
// the list matching the asset's type is filled.
type AssetHistory struct {
	AssetID   string               `json:"asset_id"`
	Equipment []EquipmentValuation `json:"equipment_valuations"`
	Vehicle   []VehicleValuation   `json:"vehicle_valuations"`
}
