package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/uow"
	"assetfin-backend/internal/infrastructure/messaging"
	"assetfin-backend/internal/testutil/assetmock"
	"assetfin-backend/internal/testutil/uowmock"
	apperr "assetfin-backend/pkg/errors"
)

const owner = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2025, time.March, 17, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeRecorder struct {
	got         []*domain.Asset
	invalidated []string
	err         error
}

func (f *fakeRecorder) Record(_ context.Context, a *domain.Asset) error {
	f.got = append(f.got, a)
	return f.err
}

func (f *fakeRecorder) InvalidateOwner(_ context.Context, ownerID string) {
	f.invalidated = append(f.invalidated, ownerID)
}

type fakePublisher struct{ events []messaging.Event }

func (f *fakePublisher) Publish(_ context.Context, e messaging.Event) error {
	f.events = append(f.events, e)
	return nil
}

func straightLineInput() UpsertAssetInput {
	return UpsertAssetInput{
		OwnerID:            owner,
		Type:               "Equipment",
		BookValue:          12_000,
		SalvageValue:       0,
		Manufacturer:       "Caterpillar",
		Model:              "320",
		ModelYear:          "2019",
		DepreciationMethod: "StraightLine",
		UsefulLife:         1,
		DepreciationRate:   0.3, // ignored by StraightLine
		UnitsPerYear:       50,
	}
}

func TestCreate_PersistsAssetAndSchedule(t *testing.T) {
	var created *domain.Asset
	var inserted []domain.DepreciationPoint
	repo := &assetmock.Repo{
		CreateFn: func(_ context.Context, a *domain.Asset) error {
			a.ID = 42
			created = a
			return nil
		},
		InsertScheduleFn: func(_ context.Context, pts []domain.DepreciationPoint) error {
			inserted = pts
			return nil
		},
	}
	rec, pub := &fakeRecorder{}, &fakePublisher{}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}),
		WithRecorder(rec), WithPublisher(pub), WithClock(clock))

	dto, err := uc.Create(context.Background(), straightLineInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(dto.AssetID) != 32 || created == nil || created.AssetID != dto.AssetID {
		t.Fatalf("asset not created: %+v", dto.Asset)
	}
	if created.DepreciationRate != 0 || created.UnitsPerYear != 0 || created.UsefulLife != 1 {
		t.Fatalf("params not normalized: %+v", created.Params())
	}
	if len(inserted) != 12 || inserted[0].AssetRef != 42 || inserted[0].Date != "2024-03-01" {
		t.Fatalf("schedule: %d points, first %+v", len(inserted), inserted)
	}
	if inserted[11].BookValue != 0 {
		t.Fatalf("last book value = %v", inserted[11].BookValue)
	}
	if len(rec.got) != 1 || len(pub.events) != 1 || pub.events[0].Type != messaging.EventScheduleRegenerated {
		t.Fatalf("after-commit steps: rec=%d events=%+v", len(rec.got), pub.events)
	}
}

func TestCreate_ValidationFailuresNeverTouchStore(t *testing.T) {
	tx := uowmock.New() // any tx call fails with errUnimplemented
	uc := NewUsecase(&assetmock.Repo{}, tx, WithClock(clock))

	in := straightLineInput()
	in.DepreciationMethod = "SumOfYearsDigits"
	if _, err := uc.Create(context.Background(), in); !apperr.IsCode(err, apperr.CodeUnsupportedMethod) {
		t.Fatalf("want UNSUPPORTED_METHOD, got %v", err)
	}

	in = straightLineInput()
	in.DepreciationMethod = "UnitsOfProduction"
	in.TotalExpectedUnits = 0
	if _, err := uc.Create(context.Background(), in); !apperr.IsCode(err, apperr.CodeMissingParameter) {
		t.Fatalf("want MISSING_PARAMETER, got %v", err)
	}

	in = straightLineInput()
	in.Type = "Boat"
	if _, err := uc.Create(context.Background(), in); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("want VALIDATION, got %v", err)
	}
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	repo := &assetmock.Repo{
		FindDuplicateFn: func(context.Context, *domain.Asset) (*domain.Asset, error) {
			return &domain.Asset{AssetID: "existing"}, nil
		},
		CreateFn: func(context.Context, *domain.Asset) error {
			t.Fatalf("Create must not be called for a duplicate")
			return nil
		},
	}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithClock(clock))
	_, err := uc.Create(context.Background(), straightLineInput())
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("want CONFLICT, got %v", err)
	}
}

func TestCreate_ProviderFailureDoesNotFailRequest(t *testing.T) {
	repo := &assetmock.Repo{}
	rec := &fakeRecorder{err: errors.New("provider timeout")}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithRecorder(rec), WithClock(clock))
	if _, err := uc.Create(context.Background(), straightLineInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(rec.got) != 1 {
		t.Fatalf("recorder not called")
	}
}

func TestUpdate_ReplacesScheduleUnderLock(t *testing.T) {
	stored := &domain.Asset{ID: 7, AssetID: "A7", OwnerID: owner, Type: domain.TypeEquipment, DepreciationMethod: domain.MethodStraightLine, UsefulLife: 5}
	var replacedRef uint64
	var replaced []domain.DepreciationPoint
	saved := false
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(_ context.Context, id string) (*domain.Asset, error) {
			if id != "A7" {
				t.Fatalf("lock id = %s", id)
			}
			return stored, nil
		},
		SaveFn: func(_ context.Context, a *domain.Asset) error { saved = true; return nil },
		ReplaceScheduleFn: func(_ context.Context, ref uint64, pts []domain.DepreciationPoint) error {
			replacedRef, replaced = ref, pts
			return nil
		},
	}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithClock(clock))

	in := straightLineInput()
	in.DepreciationMethod = "DoubleDecliningBalance"
	in.UsefulLife = 2
	dto, err := uc.Update(context.Background(), "A7", in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !saved || replacedRef != 7 || len(replaced) != 24 {
		t.Fatalf("saved=%v ref=%d points=%d", saved, replacedRef, len(replaced))
	}
	if dto.DepreciationMethod != domain.MethodDoubleDecliningBalance || dto.UsefulLife != 2 {
		t.Fatalf("asset not updated: %+v", dto.Asset)
	}
}

func TestUpdate_ReplaceFailureSurfaces(t *testing.T) {
	boom := apperr.Wrap(errors.New("disk full"), apperr.CodePersistence, "replace schedule")
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(context.Context, string) (*domain.Asset, error) {
			return &domain.Asset{ID: 1, AssetID: "A1", OwnerID: owner}, nil
		},
		ReplaceScheduleFn: func(context.Context, uint64, []domain.DepreciationPoint) error { return boom },
	}
	pub := &fakePublisher{}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithPublisher(pub), WithClock(clock))

	_, err := uc.Update(context.Background(), "A1", straightLineInput())
	if !apperr.IsCode(err, apperr.CodePersistence) {
		t.Fatalf("want PERSISTENCE_ERROR, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected on failure")
	}
}

func TestUpdate_OtherOwnerIsNotFound(t *testing.T) {
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(context.Context, string) (*domain.Asset, error) {
			return &domain.Asset{ID: 1, OwnerID: "ffffffffffffffffffffffffffffffff"}, nil
		},
	}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithClock(clock))
	if _, err := uc.Update(context.Background(), "A1", straightLineInput()); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestDelete_DropsScheduleThenAsset(t *testing.T) {
	var order []string
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(context.Context, string) (*domain.Asset, error) {
			return &domain.Asset{ID: 3, AssetID: "A3"}, nil
		},
		DeleteScheduleFn: func(_ context.Context, ref uint64) error { order = append(order, "schedule"); return nil },
		SoftDeleteFn:     func(context.Context, *domain.Asset) error { order = append(order, "asset"); return nil },
	}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}))
	if err := uc.Delete(context.Background(), "A3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(order) != 2 || order[0] != "schedule" || order[1] != "asset" {
		t.Fatalf("order = %v", order)
	}
}

func TestDelete_InvalidatesOwnerSeriesAfterCommit(t *testing.T) {
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(context.Context, string) (*domain.Asset, error) {
			return &domain.Asset{ID: 3, AssetID: "A3", OwnerID: owner}, nil
		},
		DeleteScheduleFn: func(context.Context, uint64) error { return nil },
		SoftDeleteFn:     func(context.Context, *domain.Asset) error { return nil },
	}
	rec := &fakeRecorder{}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithRecorder(rec))

	if err := uc.Delete(context.Background(), "A3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(rec.invalidated) != 1 || rec.invalidated[0] != owner {
		t.Fatalf("invalidated = %v, want [%s]", rec.invalidated, owner)
	}
	if len(rec.got) != 0 {
		t.Fatalf("delete must not record a valuation")
	}
}

func TestDelete_FailedDeleteKeepsCache(t *testing.T) {
	repo := &assetmock.Repo{
		GetByAssetIDForUpdateFn: func(context.Context, string) (*domain.Asset, error) {
			return &domain.Asset{ID: 3, AssetID: "A3", OwnerID: owner}, nil
		},
		DeleteScheduleFn: func(context.Context, uint64) error { return errors.New("lock wait timeout") },
	}
	rec := &fakeRecorder{}
	uc := NewUsecase(repo, uowmock.Passthrough(uow.Repos{Assets: repo}), WithRecorder(rec))

	if err := uc.Delete(context.Background(), "A3"); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.invalidated) != 0 {
		t.Fatalf("invalidated = %v, want none", rec.invalidated)
	}
}

func TestList_AttachesSchedules(t *testing.T) {
	repo := &assetmock.Repo{
		ListByOwnerFn: func(context.Context, string) ([]domain.Asset, error) {
			return []domain.Asset{{ID: 1, AssetID: "A"}, {ID: 2, AssetID: "B"}}, nil
		},
		ListSchedulesFn: func(_ context.Context, refs []uint64) (map[uint64][]domain.DepreciationPoint, error) {
			if len(refs) != 2 {
				t.Fatalf("refs = %v", refs)
			}
			return map[uint64][]domain.DepreciationPoint{1: {{Date: "2024-03-01"}}}, nil
		},
	}
	uc := NewUsecase(repo, uowmock.New())
	got, err := uc.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || len(got[0].DepreciationSchedule) != 1 || got[1].DepreciationSchedule == nil {
		t.Fatalf("unexpected: %+v", got)
	}
}
