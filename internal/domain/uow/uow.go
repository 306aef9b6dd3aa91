package uow

import (
	"context"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/valuation"
)

// Repos are bound to the transaction they were handed out by.
type Repos struct {
	Assets     asset.Repository
	Loans      loan.Repository
	Valuations valuation.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the asset row first, then pass it in
	WithinAssetTx(ctx context.Context, assetID string, fn func(r Repos, a *asset.Asset) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
