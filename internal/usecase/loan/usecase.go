package loan

import (
	"context"
	"time"

	domain "assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/uow"
	"assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/internal/infrastructure/messaging"
	"assetfin-backend/internal/infrastructure/metrics"
	"assetfin-backend/pkg/date"
	apperr "assetfin-backend/pkg/errors"
	"assetfin-backend/pkg/id"
)

const scheduleKind = "amortization"

type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	pub     messaging.Publisher
	metrics *metrics.Metrics
	log     logging.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithPublisher(p messaging.Publisher) Option { return func(u *Usecase) { u.pub = p } }
func WithMetrics(m *metrics.Metrics) Option      { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l logging.Logger) Option         { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option      { return func(u *Usecase) { u.now = now } }

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{repo: r, uow: tx, pub: messaging.NopPublisher{}, log: logging.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// apply resolves defaulted dates, copies in onto l and returns the freshly
// computed schedule.
func (u *Usecase) apply(l *domain.Loan, in UpsertLoanInput) (*domain.Schedule, error) {
	now := u.now().UTC()
	start, end := domain.ResolveDates(in.StartDate, in.EndDate, in.TermYears, now)

	s, err := domain.ComputeAmortizationSchedule(in.Principal, in.InterestRate, in.TermYears,
		date.Format(start), date.Format(end), now)
	if err != nil {
		return nil, err
	}
	u.metrics.ScheduleComputed(scheduleKind)

	l.AssetID = in.AssetID
	l.OwnerID = in.OwnerID
	l.LenderName = in.LenderName
	l.Principal = in.Principal
	l.InterestRate = in.InterestRate
	l.TermYears = in.TermYears
	l.MonthlyPayment = s.MonthlyPayment
	l.PaymentFrequency = domain.FrequencyMonthly
	l.StartDate = s.StartDate
	l.EndDate = s.EndDate
	l.LastPaymentDate = in.LastPaymentDate
	l.LastPaymentAmount = in.LastPaymentAmount

	l.RemainingBalance = in.RemainingBalance
	if l.RemainingBalance == 0 {
		l.RemainingBalance = in.Principal
	}
	l.Status = domain.Status(in.Status)
	if l.Status == "" {
		l.Status = domain.StatusActive
	}
	l.NextPaymentDate = in.NextPaymentDate
	if l.NextPaymentDate == "" {
		l.NextPaymentDate = date.Format(date.AddMonths(now, 1))
	}
	return s, nil
}

func (u *Usecase) Create(ctx context.Context, in UpsertLoanInput) (*LoanDTO, error) {
	l := &domain.Loan{LoanID: id.NewID32()}
	s, err := u.apply(l, in)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := checkAssetOwner(ctx, r, in.AssetID, in.OwnerID); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		for i := range s.Points {
			s.Points[i].LoanRef = l.ID
		}
		return r.Loans.InsertSchedule(ctx, s.Points)
	})
	if err != nil {
		return nil, err
	}

	u.published(ctx, l, len(s.Points))
	return &LoanDTO{Loan: l, Schedule: s.Points}, nil
}

// Update recomputes the schedule from the new terms and swaps it in under a
// row lock on the loan.
func (u *Usecase) Update(ctx context.Context, loanID string, in UpsertLoanInput) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.OwnerID != in.OwnerID {
			return apperr.Newf(apperr.CodeNotFound, "loan %s not found", loanID)
		}
		if in.AssetID != l.AssetID {
			if err := checkAssetOwner(ctx, r, in.AssetID, in.OwnerID); err != nil {
				return err
			}
		}
		s, err := u.apply(l, in)
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.ReplaceSchedule(ctx, l.ID, s.Points); err != nil {
			return err
		}
		out = &LoanDTO{Loan: l, Schedule: s.Points}
		return nil
	})
	u.metrics.ScheduleReplaced(scheduleKind, err)
	if err != nil {
		return nil, err
	}

	u.published(ctx, out.Loan, len(out.Schedule))
	return out, nil
}

// checkAssetOwner reports a missing asset and someone else's asset the same
// way, as NOT_FOUND.
func checkAssetOwner(ctx context.Context, r uow.Repos, assetID, ownerID string) error {
	a, err := r.Assets.GetByAssetID(ctx, assetID)
	if err != nil {
		return err
	}
	if a.OwnerID != ownerID {
		return apperr.Newf(apperr.CodeNotFound, "asset %s not found", assetID)
	}
	return nil
}

func (u *Usecase) Delete(ctx context.Context, loanID string) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if err := r.Loans.DeleteSchedule(ctx, l.ID); err != nil {
			return err
		}
		return r.Loans.SoftDelete(ctx, l)
	})
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	points, err := u.repo.GetSchedule(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	u.overlay(l, points)
	return &LoanDTO{Loan: l, Schedule: points}, nil
}

// List returns the owner's loans with their schedules. The remaining balance
// shown is the one projected for the current month when the schedule has it.
func (u *Usecase) List(ctx context.Context, ownerID string) ([]LoanDTO, error) {
	loans, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return []LoanDTO{}, nil
	}
	schedules, err := u.repo.ListSchedulesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]LoanDTO, len(loans))
	for i := range loans {
		pts := schedules[loans[i].ID]
		if pts == nil {
			pts = []domain.AmortizationPoint{}
		}
		u.overlay(&loans[i], pts)
		out[i] = LoanDTO{Loan: &loans[i], Schedule: pts}
	}
	return out, nil
}

func (u *Usecase) overlay(l *domain.Loan, points []domain.AmortizationPoint) {
	dated := make([]valuation.DatedValue, 0, len(points))
	for _, p := range points {
		d, err := date.Parse(p.Date)
		if err != nil {
			continue
		}
		dated = append(dated, valuation.DatedValue{Date: d, Value: float64(p.RemainingBalance)})
	}
	l.RemainingBalance = valuation.CurrentPeriodValue(dated, u.now(), l.RemainingBalance)
}

func (u *Usecase) Amortization(ctx context.Context, loanID string) ([]domain.Installment, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return domain.AmortizationBreakdown(l, u.now()), nil
}

// Payoff quotes the amount due to close the loan on payoffDate, today when
// empty.
func (u *Usecase) Payoff(ctx context.Context, loanID, payoffDate string, penaltyPct float64) (*domain.PayoffQuote, error) {
	if penaltyPct < 0 || penaltyPct > 100 {
		return nil, apperr.Newf(apperr.CodeValidation, "penalty rate %.2f outside 0..100", penaltyPct)
	}
	if payoffDate == "" {
		payoffDate = date.Format(u.now().UTC())
	} else if _, err := date.Parse(payoffDate); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeValidation, "payoff date must be YYYY-MM-DD")
	}
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	q := domain.Payoff(l, payoffDate, penaltyPct, u.now())
	return &q, nil
}

func (u *Usecase) published(ctx context.Context, l *domain.Loan, points int) {
	err := u.pub.Publish(ctx, messaging.Event{
		Type:      messaging.EventScheduleRegenerated,
		OwnerID:   l.OwnerID,
		SubjectID: l.LoanID,
		Data:      map[string]any{"kind": scheduleKind, "points": points},
	})
	if err != nil {
		u.log.Warn("schedule event dropped", logging.String("loan_id", l.LoanID), logging.Err(err))
	}
}
