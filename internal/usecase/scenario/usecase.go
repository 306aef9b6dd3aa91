package scenario

import (
	"context"
	"math"
	"strings"
	"time"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/tax"
	"assetfin-backend/internal/domain/valuation"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/pkg/date"
	apperr "assetfin-backend/pkg/errors"
)

type Usecase struct {
	assets asset.Repository
	loans  loan.Repository
	book   tax.Book
	log    logging.Logger
	now    func() time.Time
}

type Option func(*Usecase)

func WithBook(b tax.Book) Option            { return func(u *Usecase) { u.book = b } }
func WithLogger(l logging.Logger) Option    { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(assets asset.Repository, loans loan.Repository, opts ...Option) *Usecase {
	u := &Usecase{assets: assets, loans: loans, book: tax.DefaultBook(), log: logging.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Validate checks a scenario without pricing it.
func (u *Usecase) Validate(in tax.Scenario) tax.Check {
	return u.book.Validate(in, u.now())
}

// Calculate fills in what the owner's stored assets know about each sale,
// then prices the scenario. Invalid scenarios fail with VALIDATION.
func (u *Usecase) Calculate(ctx context.Context, in CalculateInput) (*tax.Result, error) {
	now := u.now()
	if c := u.book.Validate(in.Scenario, now); !c.Valid {
		return nil, apperr.New(apperr.CodeValidation, "invalid scenario").WithDetail(strings.Join(c.Errors, "; "))
	}

	sales := make([]tax.Sale, len(in.AssetsToSell))
	for i, s := range in.AssetsToSell {
		if s.AssetID != "" {
			resolved, err := u.resolveSale(ctx, in.OwnerID, s, now)
			if err != nil {
				return nil, err
			}
			s = resolved
		}
		sales[i] = s
	}
	in.AssetsToSell = sales

	res := u.book.Calculate(in.Scenario, now)
	u.log.Info("scenario calculated",
		logging.String("owner_id", in.OwnerID),
		logging.Int("sales", len(res.SaleDetails)),
		logging.Int("replacements", len(res.ReplacementDetails)),
		logging.Float64("net_cash_flow", res.NetCashFlow),
	)
	return &res, nil
}

// resolveSale defaults the cost, name and accumulated depreciation of s from
// the stored asset. Depreciation taken is the drop from book value to this
// month's scheduled value; assets without a schedule get an estimate.
func (u *Usecase) resolveSale(ctx context.Context, ownerID string, s tax.Sale, now time.Time) (tax.Sale, error) {
	a, err := u.assets.GetByAssetID(ctx, s.AssetID)
	if err != nil {
		return s, err
	}
	if a.OwnerID != ownerID {
		return s, apperr.Newf(apperr.CodeNotFound, "asset %s not found", s.AssetID)
	}
	if s.OriginalCost == 0 {
		s.OriginalCost = a.BookValue
	}
	if s.AssetName == "" {
		s.AssetName = strings.TrimSpace(a.Manufacturer + " " + a.Model)
	}
	if s.AccumulatedDepreciation != nil {
		return s, nil
	}

	points, err := u.assets.GetSchedule(ctx, a.ID)
	if err != nil {
		return s, err
	}
	var taken float64
	if len(points) == 0 {
		taken = tax.EstimateAccumulated(a.BookValue, a.CreatedAt, a.UsefulLife, "", now)
	} else {
		taken = math.Max(a.BookValue-scheduledValue(points, now, a.BookValue), 0)
	}
	s.AccumulatedDepreciation = &taken
	return s, nil
}

// scheduledValue is this month's book value, or the final one once the
// schedule has run out.
func scheduledValue(points []asset.DepreciationPoint, now time.Time, bookValue float64) float64 {
	dated := make([]valuation.DatedValue, 0, len(points))
	for _, p := range points {
		d, err := date.Parse(p.Date)
		if err != nil {
			continue
		}
		dated = append(dated, valuation.DatedValue{Date: d, Value: float64(p.BookValue)})
	}
	fallback := bookValue
	if n := len(dated); n > 0 && dated[n-1].Date.Before(now) {
		fallback = dated[n-1].Value
	}
	return valuation.CurrentPeriodValue(dated, now, fallback)
}

// Policy returns the rules for year; year 0 means the current year.
func (u *Usecase) Policy(year int) tax.Policy {
	if year == 0 {
		year = u.now().Year()
	}
	p, ok := u.book.ForYear(year)
	if !ok {
		u.log.Debug("tax policy fallback", logging.Int("requested", year), logging.Int("served", p.Year))
	}
	return p
}

func (u *Usecase) MarginalRate(income float64, year int) (*MarginalRate, error) {
	if income < 0 || math.IsNaN(income) || math.IsInf(income, 0) {
		return nil, apperr.New(apperr.CodeValidation, "taxable income must be a non-negative number")
	}
	rate := u.Policy(year).MarginalRate(income)
	if year == 0 {
		year = u.now().Year()
	}
	return &MarginalRate{
		TaxableIncome:       income,
		Year:                year,
		MarginalRate:        rate,
		MarginalRatePercent: math.Round(rate*10000) / 100,
	}, nil
}

// LoanImpact settles loanID out of a sale of its asset and compares the loan
// with an optional replacement loan starting on the liquidation date.
func (u *Usecase) LoanImpact(ctx context.Context, loanID string, in LoanImpactInput) (*loan.ScenarioImpact, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != in.OwnerID {
		return nil, apperr.Newf(apperr.CodeNotFound, "loan %s not found", loanID)
	}

	now := u.now()
	when := in.LiquidationDate
	if when == "" {
		when = date.Format(now.UTC())
	}
	var replacement *loan.Loan
	if in.ReplacementLoan != nil {
		if in.ReplacementLoan.Principal > in.ReplacementPrice {
			return nil, apperr.New(apperr.CodeValidation, "replacement loan exceeds the replacement price")
		}
		replacement = in.ReplacementLoan.Loan(when)
	}

	out := loan.Scenario(in.SalePrice, when, l, in.ReplacementPrice, replacement, in.TransactionFees, in.PrepaymentPenaltyRate, now)
	u.log.Info("loan impact computed",
		logging.String("loan_id", loanID),
		logging.Float64("net_cash_impact", out.Summary.NetCashImpact),
		logging.String("recommendation", out.Recommendation.Recommendation),
	)
	return &out, nil
}
