package mysql

import (
	"context"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Assets:     &AssetRepository{db: tx},
		Loans:      &LoanRepository{db: tx},
		Valuations: &ValuationRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinAssetTx(ctx context.Context, assetID string, fn func(r uow.Repos, a *asset.Asset) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the asset row up-front so concurrent updates serialise
		a, err := r.Assets.GetByAssetIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
