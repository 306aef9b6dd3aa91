package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusActive  Status = "Active"
	StatusPaidOff Status = "PaidOff"
	StatusClosed  Status = "Closed"
)

const FrequencyMonthly = "Monthly"

// Loan dates are kept as YYYY-MM-DD strings, the same format the schedule uses.
type Loan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	AssetID    string `gorm:"size:32;index:idx_loans_asset" json:"asset_id"`
	OwnerID    string `gorm:"size:32;index:idx_loans_owner" json:"owner_id"`
	LenderName string `gorm:"size:128" json:"lender_name"`

	Principal        float64 `gorm:"type:decimal(18,2)" json:"loan_amount"`
	InterestRate     float64 `gorm:"type:decimal(7,4)" json:"interest_rate"`
	TermYears        int     `json:"loan_term_years"`
	MonthlyPayment   float64 `gorm:"type:decimal(18,2)" json:"monthly_payment"`
	RemainingBalance float64 `gorm:"type:decimal(18,2)" json:"remaining_balance"`
	PaymentFrequency string  `gorm:"size:16" json:"payment_frequency"`
	Status           Status  `gorm:"size:16" json:"status"`

	LastPaymentDate   string  `gorm:"size:10" json:"last_payment_date,omitempty"`
	LastPaymentAmount float64 `gorm:"type:decimal(18,2)" json:"last_payment_amount"`
	NextPaymentDate   string  `gorm:"size:10" json:"next_payment_date"`
	StartDate         string  `gorm:"column:loan_start_date;size:10" json:"loan_start_date"`
	EndDate           string  `gorm:"column:loan_end_date;size:10" json:"loan_end_date"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// AmortizationPoint is the projected state of a loan after one monthly
// payment. LoanRef points at Loan.ID.
type AmortizationPoint struct {
	ID               uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanRef          uint64    `gorm:"column:loan_ref;index:idx_lpp_loan_date,priority:1" json:"-"`
	Date             string    `gorm:"column:payment_date;size:10;index:idx_lpp_loan_date,priority:2" json:"loan_payment_date"`
	Payment          float32   `gorm:"column:payment_amount" json:"payment_amount"`
	RemainingBalance float32   `gorm:"column:new_remaining_value" json:"new_remaining_value"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"-"`
}

func (AmortizationPoint) TableName() string { return "loan_projected_payments" }
