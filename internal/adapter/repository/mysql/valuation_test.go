package mysql

import (
	"context"
	"testing"
	"time"

	valuationDomain "assetfin-backend/internal/domain/valuation"
	"assetfin-backend/pkg/id"
)

func TestValuation_ListByOwnerFollowsAssets(t *testing.T) {
	db := openTestDB(t)
	assets := NewAssetRepository(db)
	repo := NewValuationRepository(db)
	ctx := context.Background()
	owner := id.NewID32()

	mine, deleted, theirs := makeAsset(owner), makeAsset(owner), makeAsset(id.NewID32())
	deleted.Model = "950"
	if err := assets.Create(ctx, mine); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := assets.Create(ctx, deleted); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := assets.Create(ctx, theirs); err != nil {
		t.Fatalf("Create: %v", err)
	}

	when := time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)
	for i, assetID := range []string{mine.AssetID, mine.AssetID, deleted.AssetID, theirs.AssetID} {
		v := &valuationDomain.EquipmentValuation{
			AssetID:                 assetID,
			AdjustedFairMarketValue: float64(1000 * (i + 1)),
			ValuationDate:           when.AddDate(0, i, 0),
		}
		if err := repo.InsertEquipment(ctx, v); err != nil {
			t.Fatalf("InsertEquipment: %v", err)
		}
		if v.LogID == 0 {
			t.Fatalf("log id not set")
		}
	}
	if err := assets.SoftDelete(ctx, deleted); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	got, err := repo.ListEquipmentByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListEquipmentByOwner: %v", err)
	}
	if len(got) != 2 || got[0].AdjustedFairMarketValue != 1000 || got[1].AdjustedFairMarketValue != 2000 {
		t.Fatalf("unexpected valuations: %+v", got)
	}

	byAsset, err := repo.ListEquipmentByAsset(ctx, owner, mine.AssetID)
	if err != nil || len(byAsset) != 2 || byAsset[0].AdjustedFairMarketValue != 1000 {
		t.Fatalf("ListEquipmentByAsset: %v %+v", err, byAsset)
	}
	if foreign, err := repo.ListEquipmentByAsset(ctx, owner, theirs.AssetID); err != nil || len(foreign) != 0 {
		t.Fatalf("another owner's asset leaked: %v %+v", err, foreign)
	}
	if gone, err := repo.ListEquipmentByAsset(ctx, owner, deleted.AssetID); err != nil || len(gone) != 0 {
		t.Fatalf("deleted asset leaked: %v %+v", err, gone)
	}
}

func TestValuation_Vehicles(t *testing.T) {
	db := openTestDB(t)
	assets := NewAssetRepository(db)
	repo := NewValuationRepository(db)
	ctx := context.Background()
	owner := id.NewID32()

	truck := makeAsset(owner)
	if err := assets.Create(ctx, truck); err != nil {
		t.Fatalf("Create: %v", err)
	}
	v := &valuationDomain.VehicleValuation{
		AssetID:         truck.AssetID,
		AdjustedTradeIn: 31_500,
		AdjustedRetail:  38_000,
		ValuationDate:   time.Now().UTC(),
	}
	if err := repo.InsertVehicle(ctx, v); err != nil {
		t.Fatalf("InsertVehicle: %v", err)
	}
	got, err := repo.ListVehicleByOwner(ctx, owner)
	if err != nil || len(got) != 1 || got[0].AdjustedTradeIn != 31_500 {
		t.Fatalf("ListVehicleByOwner: %v %+v", err, got)
	}
	byAsset, err := repo.ListVehicleByAsset(ctx, owner, truck.AssetID)
	if err != nil || len(byAsset) != 1 || byAsset[0].AdjustedRetail != 38_000 {
		t.Fatalf("ListVehicleByAsset: %v %+v", err, byAsset)
	}
	if other, err := repo.ListVehicleByAsset(ctx, id.NewID32(), truck.AssetID); err != nil || len(other) != 0 {
		t.Fatalf("wrong owner saw the truck: %v %+v", err, other)
	}
}
