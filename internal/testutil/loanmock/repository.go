package loanmock

import (
	"context"
	"errors"

	domain "assetfin-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers succeed, unset readers return errUnimplemented.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	SoftDeleteFn           func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByOwnerFn          func(ctx context.Context, ownerID string) ([]domain.Loan, error)

	InsertScheduleFn       func(ctx context.Context, points []domain.AmortizationPoint) error
	DeleteScheduleFn       func(ctx context.Context, loanRef uint64) error
	ReplaceScheduleFn      func(ctx context.Context, loanRef uint64, points []domain.AmortizationPoint) error
	GetScheduleFn          func(ctx context.Context, loanRef uint64) ([]domain.AmortizationPoint, error)
	ListSchedulesByOwnerFn func(ctx context.Context, ownerID string) (map[uint64][]domain.AmortizationPoint, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) SoftDelete(ctx context.Context, l *domain.Loan) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Loan, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}

func (m *Repo) InsertSchedule(ctx context.Context, points []domain.AmortizationPoint) error {
	if m.InsertScheduleFn != nil {
		return m.InsertScheduleFn(ctx, points)
	}
	return nil
}

func (m *Repo) DeleteSchedule(ctx context.Context, loanRef uint64) error {
	if m.DeleteScheduleFn != nil {
		return m.DeleteScheduleFn(ctx, loanRef)
	}
	return nil
}

func (m *Repo) ReplaceSchedule(ctx context.Context, loanRef uint64, points []domain.AmortizationPoint) error {
	if m.ReplaceScheduleFn != nil {
		return m.ReplaceScheduleFn(ctx, loanRef, points)
	}
	return nil
}

func (m *Repo) GetSchedule(ctx context.Context, loanRef uint64) ([]domain.AmortizationPoint, error) {
	if m.GetScheduleFn != nil {
		return m.GetScheduleFn(ctx, loanRef)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListSchedulesByOwner(ctx context.Context, ownerID string) (map[uint64][]domain.AmortizationPoint, error) {
	if m.ListSchedulesByOwnerFn != nil {
		return m.ListSchedulesByOwnerFn(ctx, ownerID)
	}
	return nil, errUnimplemented
}
