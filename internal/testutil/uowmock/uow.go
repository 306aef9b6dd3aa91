package uowmock

import (
	"context"
	"errors"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinAssetTxFn func(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error
	WithinLoanTxFn  func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs every body directly against repos, with no transaction.
// The locked rows are read through the ForUpdate getters of repos.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinAssetTxFn: func(ctx context.Context, assetID string, fn func(uow.Repos, *asset.Asset) error) error {
			a, err := repos.Assets.GetByAssetIDForUpdate(ctx, assetID)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			l, err := repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			return fn(repos, l)
		},
	}
}

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinAssetTx(fn func(context.Context, string, func(uow.Repos, *asset.Asset) error) error) *UoW {
	m.WithinAssetTxFn = fn
	return m
}
func (m *UoW) WithWithinLoanTx(fn func(context.Context, string, func(uow.Repos, *loan.Loan) error) error) *UoW {
	m.WithinLoanTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinAssetTx(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error {
	if m.WithinAssetTxFn != nil {
		return m.WithinAssetTxFn(ctx, assetID, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	return errUnimplemented
}
