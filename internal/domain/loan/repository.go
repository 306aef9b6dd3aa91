package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	SoftDelete(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Loan, error)

	InsertSchedule(ctx context.Context, points []AmortizationPoint) error
	DeleteSchedule(ctx context.Context, loanRef uint64) error
	ReplaceSchedule(ctx context.Context, loanRef uint64, points []AmortizationPoint) error
	GetSchedule(ctx context.Context, loanRef uint64) ([]AmortizationPoint, error)
	ListSchedulesByOwner(ctx context.Context, ownerID string) (map[uint64][]AmortizationPoint, error)
}
