package mysql

import (
	"testing"

	assetDomain "assetfin-backend/internal/domain/asset"
	loanDomain "assetfin-backend/internal/domain/loan"
	valuationDomain "assetfin-backend/internal/domain/valuation"
	"assetfin-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with every table migrated. The
// pool is pinned to one connection since each sqlite :memory: connection is
// its own database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&assetDomain.Asset{},
		&assetDomain.DepreciationPoint{},
		&loanDomain.Loan{},
		&loanDomain.AmortizationPoint{},
		&valuationDomain.EquipmentValuation{},
		&valuationDomain.VehicleValuation{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeAsset(ownerID string) *assetDomain.Asset {
	return &assetDomain.Asset{
		AssetID:            id.NewID32(),
		OwnerID:            ownerID,
		Type:               assetDomain.TypeEquipment,
		BookValue:          120_000,
		SalvageValue:       20_000,
		Manufacturer:       "Caterpillar",
		Model:              "320",
		ModelYear:          "2019",
		Usage:              3_400,
		Condition:          "Good",
		Country:            "USA",
		State:              "TX",
		DepreciationMethod: assetDomain.MethodStraightLine,
		UsefulLife:         5,
	}
}

func makeLoan(ownerID, assetID string) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:           id.NewID32(),
		AssetID:          assetID,
		OwnerID:          ownerID,
		LenderName:       "First Bank",
		Principal:        50_000,
		InterestRate:     6,
		TermYears:        3,
		MonthlyPayment:   1_521.10,
		RemainingBalance: 50_000,
		PaymentFrequency: loanDomain.FrequencyMonthly,
		Status:           loanDomain.StatusActive,
		StartDate:        "2025-01-10",
		EndDate:          "2028-01-10",
	}
}

func depPoints(dates ...string) []assetDomain.DepreciationPoint {
	out := make([]assetDomain.DepreciationPoint, 0, len(dates))
	v := float32(1000)
	for _, d := range dates {
		out = append(out, assetDomain.DepreciationPoint{Date: d, BookValue: v})
		v -= 10
	}
	return out
}
