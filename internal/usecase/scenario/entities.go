package scenario

import (
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/tax"
)

// CalculateInput is a scenario run on behalf of OwnerID. Sales naming an
// asset_id must reference one of the owner's assets.
type CalculateInput struct {
	OwnerID string `json:"owner_id" validate:"required,hex32"`
	tax.Scenario
}

// LoanImpactInput prices selling the asset behind a loan and buying a
// replacement, optionally financed.
type LoanImpactInput struct {
	OwnerID               string                 `json:"owner_id" validate:"required,hex32"`
	SalePrice             float64                `json:"sale_price" validate:"gte=0,dec2"`
	LiquidationDate       string                 `json:"liquidation_date" validate:"omitempty,ymd"`
	TransactionFees       float64                `json:"transaction_fees" validate:"gte=0,dec2"`
	PrepaymentPenaltyRate float64                `json:"prepayment_penalty_rate" validate:"gte=0,lte=100"`
	ReplacementPrice      float64                `json:"replacement_asset_price" validate:"gte=0,dec2"`
	ReplacementLoan       *loan.ReplacementTerms `json:"replacement_loan,omitempty"`
}

type MarginalRate struct {
	TaxableIncome       float64 `json:"taxable_income"`
	Year                int     `json:"year"`
	MarginalRate        float64 `json:"marginal_rate"`
	MarginalRatePercent float64 `json:"marginal_rate_percent"`
}
