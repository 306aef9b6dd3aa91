package mysql

import (
	"context"

	loanDomain "assetfin-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *LoanRepository) Tx(ctx context.Context, fn func(repo loanDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return dbErr(r.db.WithContext(ctx).Create(l).Error, "create loan")
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return dbErr(r.db.WithContext(ctx).Save(l).Error, "save loan")
}

func (r *LoanRepository) SoftDelete(ctx context.Context, l *loanDomain.Loan) error {
	return dbErr(r.db.WithContext(ctx).Delete(l).Error, "delete loan")
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, dbErr(res.Error, "loan")
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, dbErr(res.Error, "loan")
}

func (r *LoanRepository) ListByOwner(ctx context.Context, ownerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&out)
	return out, dbErr(res.Error, "list loans")
}

func (r *LoanRepository) InsertSchedule(ctx context.Context, points []loanDomain.AmortizationPoint) error {
	if len(points) == 0 {
		return nil
	}
	return dbErr(r.db.WithContext(ctx).CreateInBatches(points, scheduleBatchSize).Error, "insert amortization schedule")
}

func (r *LoanRepository) DeleteSchedule(ctx context.Context, loanRef uint64) error {
	res := r.db.WithContext(ctx).Where("loan_ref = ?", loanRef).Delete(&loanDomain.AmortizationPoint{})
	return dbErr(res.Error, "delete amortization schedule")
}

func (r *LoanRepository) ReplaceSchedule(ctx context.Context, loanRef uint64, points []loanDomain.AmortizationPoint) error {
	return r.Tx(ctx, func(repo loanDomain.Repository) error {
		if err := repo.DeleteSchedule(ctx, loanRef); err != nil {
			return err
		}
		for i := range points {
			points[i].ID = 0
			points[i].LoanRef = loanRef
		}
		return repo.InsertSchedule(ctx, points)
	})
}

func (r *LoanRepository) GetSchedule(ctx context.Context, loanRef uint64) ([]loanDomain.AmortizationPoint, error) {
	var out []loanDomain.AmortizationPoint
	res := r.db.WithContext(ctx).Where("loan_ref = ?", loanRef).Order("payment_date ASC").Find(&out)
	return out, dbErr(res.Error, "amortization schedule")
}

// ListSchedulesByOwner groups the points of every live loan of ownerID by
// Loan.ID.
func (r *LoanRepository) ListSchedulesByOwner(ctx context.Context, ownerID string) (map[uint64][]loanDomain.AmortizationPoint, error) {
	var rows []loanDomain.AmortizationPoint
	res := r.db.WithContext(ctx).
		Joins("JOIN loans ON loans.id = loan_projected_payments.loan_ref").
		Where("loans.owner_id = ? AND loans.deleted_at IS NULL", ownerID).
		Order("loan_projected_payments.loan_ref ASC, loan_projected_payments.payment_date ASC").
		Find(&rows)
	if res.Error != nil {
		return nil, dbErr(res.Error, "amortization schedules")
	}
	out := make(map[uint64][]loanDomain.AmortizationPoint)
	for _, p := range rows {
		out[p.LoanRef] = append(out[p.LoanRef], p)
	}
	return out, nil
}
