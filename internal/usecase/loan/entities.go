package loan

import domain "assetfin-backend/internal/domain/loan"

// UpsertLoanInput is the body of both create and update. Empty dates fall
// back to their defaults.
type UpsertLoanInput struct {
	AssetID    string `json:"asset_id" validate:"required,hex32"`
	OwnerID    string `json:"owner_id" validate:"required,hex32"`
	LenderName string `json:"lender_name" validate:"max=128"`

	Principal    float64 `json:"loan_amount" validate:"gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	TermYears    int     `json:"loan_term_years" validate:"gt=0,lte=50"`
	// RemainingBalance defaults to the principal when zero.
	RemainingBalance float64 `json:"remaining_balance" validate:"gte=0,dec2"`
	Status           string  `json:"status" validate:"omitempty,oneof=Active PaidOff Closed"`

	StartDate         string  `json:"loan_start_date" validate:"omitempty,ymd"`
	EndDate           string  `json:"loan_end_date" validate:"omitempty,ymd"`
	NextPaymentDate   string  `json:"next_payment_date" validate:"omitempty,ymd"`
	LastPaymentDate   string  `json:"last_payment_date" validate:"omitempty,ymd"`
	LastPaymentAmount float64 `json:"last_payment_amount" validate:"gte=0,dec2"`
}

type LoanDTO struct {
	*domain.Loan
	Schedule []domain.AmortizationPoint `json:"loan_projected_payments"`
}
