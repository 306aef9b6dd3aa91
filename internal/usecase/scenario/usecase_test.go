package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/loan"
	"assetfin-backend/internal/domain/tax"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/internal/testutil/assetmock"
	"assetfin-backend/internal/testutil/loanmock"
	apperr "assetfin-backend/pkg/errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	owner   = "0123456789abcdef0123456789abcdef"
	other   = "fedcba9876543210fedcba9876543210"
	assetID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	loanID  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var fixedNow = time.Date(2025, time.March, 17, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ptr(v float64) *float64 { return &v }

func storedAsset(a *asset.Asset, points []asset.DepreciationPoint) *assetmock.Repo {
	return &assetmock.Repo{
		GetByAssetIDFn: func(_ context.Context, id string) (*asset.Asset, error) {
			if id != a.AssetID {
				return nil, apperr.Newf(apperr.CodeNotFound, "asset %s not found", id)
			}
			return a, nil
		},
		GetScheduleFn: func(_ context.Context, ref uint64) ([]asset.DepreciationPoint, error) {
			return points, nil
		},
	}
}

func excavator() *asset.Asset {
	return &asset.Asset{ID: 7, AssetID: assetID, OwnerID: owner, BookValue: 100_000, Manufacturer: "Cat", Model: "320", UsefulLife: 10}
}

func TestCalculate_SaleDepreciationFromSchedule(t *testing.T) {
	points := []asset.DepreciationPoint{
		{Date: "2025-02-01", BookValue: 62_000},
		{Date: "2025-03-01", BookValue: 60_000},
		{Date: "2025-04-01", BookValue: 58_000},
	}
	uc := NewUsecase(storedAsset(excavator(), points), &loanmock.Repo{}, WithClock(clock))

	res, err := uc.Calculate(context.Background(), CalculateInput{
		OwnerID: owner,
		Scenario: tax.Scenario{
			MarginalTaxRate: 0.24,
			AssetsToSell:    []tax.Sale{{AssetID: assetID, SalePrice: 70_000}},
		},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	sale := res.SaleDetails[0]
	if sale.AssetName != "Cat 320" || sale.OriginalCost != 100_000 {
		t.Fatalf("defaults from asset: name=%q cost=%v", sale.AssetName, sale.OriginalCost)
	}
	if sale.AccumulatedDepreciation != 40_000 || sale.AdjustedBasis != 60_000 {
		t.Fatalf("depreciation taken: %v basis %v", sale.AccumulatedDepreciation, sale.AdjustedBasis)
	}
	if sale.Section1245Recapture != 10_000 || res.TotalTaxOnSales != 2_400 {
		t.Fatalf("recapture %v tax %v", sale.Section1245Recapture, res.TotalTaxOnSales)
	}
}

func TestCalculate_ScheduleRunOutUsesFinalValue(t *testing.T) {
	points := []asset.DepreciationPoint{
		{Date: "2023-12-01", BookValue: 5_000},
		{Date: "2024-01-01", BookValue: 0},
	}
	uc := NewUsecase(storedAsset(excavator(), points), &loanmock.Repo{}, WithClock(clock))

	res, err := uc.Calculate(context.Background(), CalculateInput{
		OwnerID:  owner,
		Scenario: tax.Scenario{AssetsToSell: []tax.Sale{{AssetID: assetID, SalePrice: 1_000}}},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got := res.SaleDetails[0].AccumulatedDepreciation; got != 100_000 {
		t.Fatalf("fully depreciated asset: got %v", got)
	}
}

func TestCalculate_EstimatesWithoutSchedule(t *testing.T) {
	a := excavator()
	a.CreatedAt = fixedNow.AddDate(-2, -1, 0)
	uc := NewUsecase(storedAsset(a, nil), &loanmock.Repo{}, WithClock(clock))

	res, err := uc.Calculate(context.Background(), CalculateInput{
		OwnerID:  owner,
		Scenario: tax.Scenario{AssetsToSell: []tax.Sale{{AssetID: assetID, SalePrice: 90_000}}},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// straight line over ten years, about 2.08 years in
	if got := res.SaleDetails[0].AccumulatedDepreciation; math.Abs(got-20_780) > 10 {
		t.Fatalf("estimate: got %v", got)
	}
}

func TestCalculate_GivenDepreciationSkipsSchedule(t *testing.T) {
	repo := storedAsset(excavator(), nil)
	repo.GetScheduleFn = nil
	uc := NewUsecase(repo, &loanmock.Repo{}, WithClock(clock))

	res, err := uc.Calculate(context.Background(), CalculateInput{
		OwnerID: owner,
		Scenario: tax.Scenario{AssetsToSell: []tax.Sale{{
			AssetID: assetID, AssetName: "Yard excavator", OriginalCost: 120_000,
			AccumulatedDepreciation: ptr(30_000), SalePrice: 80_000,
		}}},
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	sale := res.SaleDetails[0]
	if sale.AssetName != "Yard excavator" || sale.OriginalCost != 120_000 || sale.AccumulatedDepreciation != 30_000 {
		t.Fatalf("caller values must win: %+v", sale)
	}
}

func TestCalculate_ForeignAssetIsNotFound(t *testing.T) {
	a := excavator()
	a.OwnerID = other
	uc := NewUsecase(storedAsset(a, nil), &loanmock.Repo{}, WithClock(clock))

	_, err := uc.Calculate(context.Background(), CalculateInput{
		OwnerID:  owner,
		Scenario: tax.Scenario{AssetsToSell: []tax.Sale{{AssetID: assetID, SalePrice: 1}}},
	})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestCalculate_InvalidScenario(t *testing.T) {
	uc := NewUsecase(&assetmock.Repo{}, &loanmock.Repo{}, WithClock(clock))

	_, err := uc.Calculate(context.Background(), CalculateInput{OwnerID: owner, Scenario: tax.Scenario{MarginalTaxRate: 2}})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("want VALIDATION, got %v", err)
	}
	ae := err.(*apperr.AppError)
	if ae.Detail != "Must include either assets to sell or replacement assets; Marginal tax rate must be between 0 and 1" {
		t.Fatalf("detail: %q", ae.Detail)
	}
}

func TestValidate_ReportsWithoutFailing(t *testing.T) {
	uc := NewUsecase(&assetmock.Repo{}, &loanmock.Repo{}, WithClock(clock))
	c := uc.Validate(tax.Scenario{MarginalTaxRate: 0.3, ReplacementAssets: []tax.Replacement{{Name: "X", Cost: 1, BusinessUsePercent: 101}}})
	if c.Valid || len(c.Errors) != 1 {
		t.Fatalf("check: %+v", c)
	}
}

func TestPolicy_CurrentAndFallback(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	uc := NewUsecase(&assetmock.Repo{}, &loanmock.Repo{}, WithClock(clock), WithLogger(logging.NewFromCore(core)))

	if p := uc.Policy(0); p.Year != 2025 {
		t.Fatalf("current year policy: %d", p.Year)
	}
	if p := uc.Policy(2024); p.BonusDepreciationPercent != 60 {
		t.Fatalf("2024 bonus: %v", p.BonusDepreciationPercent)
	}
	if p := uc.Policy(2040); p.Year != 2025 {
		t.Fatalf("fallback: %d", p.Year)
	}
	if logs.FilterMessage("tax policy fallback").Len() != 1 {
		t.Fatalf("fallback not logged once: %d", logs.Len())
	}
}

func TestMarginalRate(t *testing.T) {
	uc := NewUsecase(&assetmock.Repo{}, &loanmock.Repo{}, WithClock(clock))

	mr, err := uc.MarginalRate(50_000, 0)
	if err != nil {
		t.Fatalf("MarginalRate: %v", err)
	}
	if mr.Year != 2025 || mr.MarginalRate != 0.22 || mr.MarginalRatePercent != 22 {
		t.Fatalf("got %+v", mr)
	}

	if _, err := uc.MarginalRate(-1, 2025); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("negative income: %v", err)
	}
}

func ownedLoan() *loanmock.Repo {
	return &loanmock.Repo{
		GetByLoanIDFn: func(_ context.Context, id string) (*loan.Loan, error) {
			return &loan.Loan{
				ID: 3, LoanID: id, OwnerID: owner, AssetID: assetID,
				Principal: 12_000, TermYears: 1, MonthlyPayment: 1_000, StartDate: "2024-01-01",
			}, nil
		},
	}
}

func TestLoanImpact(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	uc := NewUsecase(&assetmock.Repo{}, ownedLoan(), WithClock(clock), WithLogger(logging.NewFromCore(core)))

	out, err := uc.LoanImpact(context.Background(), loanID, LoanImpactInput{
		OwnerID: owner, SalePrice: 10_000, LiquidationDate: "2024-06-01", TransactionFees: 500,
		PrepaymentPenaltyRate: 2, ReplacementPrice: 30_000,
		ReplacementLoan: &loan.ReplacementTerms{Principal: 20_000, TermYears: 2},
	})
	if err != nil {
		t.Fatalf("LoanImpact: %v", err)
	}
	if out.Liquidation.NetProceeds != 2_360 || out.Replacement.CashRequired != 7_640 {
		t.Fatalf("net %v cash %v", out.Liquidation.NetProceeds, out.Replacement.CashRequired)
	}
	if out.Replacement.Payments.NewMonthlyPayment != 833.33 {
		t.Fatalf("new payment %v", out.Replacement.Payments.NewMonthlyPayment)
	}
	if logs.FilterMessage("loan impact computed").Len() != 1 {
		t.Fatal("impact not logged")
	}
}

func TestLoanImpact_DefaultsToToday(t *testing.T) {
	uc := NewUsecase(&assetmock.Repo{}, ownedLoan(), WithClock(clock))

	out, err := uc.LoanImpact(context.Background(), loanID, LoanImpactInput{OwnerID: owner, SalePrice: 5_000})
	if err != nil {
		t.Fatalf("LoanImpact: %v", err)
	}
	// the one-year loan ended in January, nothing is left to settle
	if out.Summary.LiquidationDate != "2025-03-17" || out.Liquidation.LoanPayoff.RemainingBalance != 0 {
		t.Fatalf("date %s balance %v", out.Summary.LiquidationDate, out.Liquidation.LoanPayoff.RemainingBalance)
	}
}

func TestLoanImpact_Rejections(t *testing.T) {
	uc := NewUsecase(&assetmock.Repo{}, ownedLoan(), WithClock(clock))

	_, err := uc.LoanImpact(context.Background(), loanID, LoanImpactInput{OwnerID: other})
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("foreign loan: %v", err)
	}

	_, err = uc.LoanImpact(context.Background(), loanID, LoanImpactInput{
		OwnerID: owner, ReplacementPrice: 10_000,
		ReplacementLoan: &loan.ReplacementTerms{Principal: 20_000, TermYears: 2},
	})
	if !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("oversized replacement loan: %v", err)
	}
}
