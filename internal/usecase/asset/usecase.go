package asset

import (
	"context"
	"time"

	domain "assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/domain/uow"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/internal/infrastructure/messaging"
	"assetfin-backend/internal/infrastructure/metrics"
	apperr "assetfin-backend/pkg/errors"
	"assetfin-backend/pkg/id"
)

const scheduleKind = "depreciation"

// Recorder stores a fresh market valuation for an asset and drops an owner's
// cached valuation series.
type Recorder interface {
	Record(ctx context.Context, a *domain.Asset) error
	InvalidateOwner(ctx context.Context, ownerID string)
}

type Usecase struct {
	repo     domain.Repository
	uow      uow.UnitOfWork
	recorder Recorder
	pub      messaging.Publisher
	metrics  *metrics.Metrics
	log      logging.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithRecorder(r Recorder) Option             { return func(u *Usecase) { u.recorder = r } }
func WithPublisher(p messaging.Publisher) Option { return func(u *Usecase) { u.pub = p } }
func WithMetrics(m *metrics.Metrics) Option      { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l logging.Logger) Option         { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option      { return func(u *Usecase) { u.now = now } }

// NewUsecase: reads go through r, writes through tx.
func NewUsecase(r domain.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{repo: r, uow: tx, pub: messaging.NopPublisher{}, log: logging.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// schedule validates the method and its parameters and runs the engine.
func (u *Usecase) schedule(in UpsertAssetInput) (domain.Method, domain.Params, []domain.DepreciationPoint, error) {
	if !domain.Type(in.Type).Valid() {
		return "", domain.Params{}, nil, apperr.Newf(apperr.CodeValidation, "unknown asset type %q", in.Type)
	}
	m, err := domain.ParseMethod(in.DepreciationMethod)
	if err != nil {
		return "", domain.Params{}, nil, err
	}
	p := domain.NormalizeParams(m, in.params())
	points, err := domain.ComputeDepreciationSchedule(m, in.BookValue, in.SalvageValue, p, u.now())
	if err != nil {
		return "", domain.Params{}, nil, err
	}
	u.metrics.ScheduleComputed(scheduleKind)
	return m, p, points, nil
}

func (u *Usecase) Create(ctx context.Context, in UpsertAssetInput) (*AssetDTO, error) {
	m, p, points, err := u.schedule(in)
	if err != nil {
		return nil, err
	}

	a := &domain.Asset{AssetID: id.NewID32(), DepreciationMethod: m}
	in.apply(a)
	a.SetParams(p)

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := rejectDuplicate(ctx, r.Assets, a); err != nil {
			return err
		}
		if err := r.Assets.Create(ctx, a); err != nil {
			return err
		}
		for i := range points {
			points[i].AssetRef = a.ID
		}
		return r.Assets.InsertSchedule(ctx, points)
	})
	if err != nil {
		return nil, err
	}

	u.afterCommit(ctx, a, len(points))
	return &AssetDTO{Asset: a, DepreciationSchedule: points}, nil
}

// Update recomputes the schedule and swaps it in under a row lock on the
// asset. Any failure leaves the previous schedule in place.
func (u *Usecase) Update(ctx context.Context, assetID string, in UpsertAssetInput) (*AssetDTO, error) {
	m, p, points, err := u.schedule(in)
	if err != nil {
		return nil, err
	}

	var out *domain.Asset
	err = u.uow.WithinAssetTx(ctx, assetID, func(r uow.Repos, a *domain.Asset) error {
		if a.OwnerID != in.OwnerID {
			return apperr.Newf(apperr.CodeNotFound, "asset %s not found", assetID)
		}
		in.apply(a)
		a.DepreciationMethod = m
		a.SetParams(p)

		if err := rejectDuplicate(ctx, r.Assets, a); err != nil {
			return err
		}
		if err := r.Assets.Save(ctx, a); err != nil {
			return err
		}
		if err := r.Assets.ReplaceSchedule(ctx, a.ID, points); err != nil {
			return err
		}
		out = a
		return nil
	})
	u.metrics.ScheduleReplaced(scheduleKind, err)
	if err != nil {
		return nil, err
	}

	u.afterCommit(ctx, out, len(points))
	return &AssetDTO{Asset: out, DepreciationSchedule: points}, nil
}

// Delete soft-deletes the asset and drops its schedule. The owner's cached
// valuation series no longer matches once the asset is gone.
func (u *Usecase) Delete(ctx context.Context, assetID string) error {
	var ownerID string
	err := u.uow.WithinAssetTx(ctx, assetID, func(r uow.Repos, a *domain.Asset) error {
		ownerID = a.OwnerID
		if err := r.Assets.DeleteSchedule(ctx, a.ID); err != nil {
			return err
		}
		return r.Assets.SoftDelete(ctx, a)
	})
	if err != nil {
		return err
	}
	if u.recorder != nil {
		u.recorder.InvalidateOwner(ctx, ownerID)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, assetID string) (*AssetDTO, error) {
	a, err := u.repo.GetByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	points, err := u.repo.GetSchedule(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &AssetDTO{Asset: a, DepreciationSchedule: points}, nil
}

// List returns the owner's assets, each with its schedule attached.
func (u *Usecase) List(ctx context.Context, ownerID string) ([]AssetDTO, error) {
	assets, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return []AssetDTO{}, nil
	}

	refs := make([]uint64, len(assets))
	for i := range assets {
		refs[i] = assets[i].ID
	}
	schedules, err := u.repo.ListSchedules(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]AssetDTO, len(assets))
	for i := range assets {
		pts := schedules[assets[i].ID]
		if pts == nil {
			pts = []domain.DepreciationPoint{}
		}
		out[i] = AssetDTO{Asset: &assets[i], DepreciationSchedule: pts}
	}
	return out, nil
}

func (u *Usecase) Schedule(ctx context.Context, assetID string) ([]domain.DepreciationPoint, error) {
	dto, err := u.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return dto.DepreciationSchedule, nil
}

func rejectDuplicate(ctx context.Context, repo domain.Repository, a *domain.Asset) error {
	dup, err := repo.FindDuplicate(ctx, a)
	if err != nil {
		return err
	}
	if dup != nil {
		return apperr.Newf(apperr.CodeConflict, "asset %s %s %s already registered", a.Manufacturer, a.Model, a.ModelYear).
			WithDetail("asset_id=" + dup.AssetID)
	}
	return nil
}

// afterCommit runs the steps that must not fail the request: the fresh
// valuation and the change event.
func (u *Usecase) afterCommit(ctx context.Context, a *domain.Asset, points int) {
	if u.recorder != nil {
		if err := u.recorder.Record(ctx, a); err != nil {
			u.log.Warn("valuation on save failed", logging.String("asset_id", a.AssetID), logging.Err(err))
		}
	}
	err := u.pub.Publish(ctx, messaging.Event{
		Type:      messaging.EventScheduleRegenerated,
		OwnerID:   a.OwnerID,
		SubjectID: a.AssetID,
		Data:      map[string]any{"kind": scheduleKind, "points": points},
	})
	if err != nil {
		u.log.Warn("schedule event dropped", logging.String("asset_id", a.AssetID), logging.Err(err))
	}
}
