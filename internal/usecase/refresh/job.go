// Package refresh re-values every active asset once a month.
package refresh

import (
	"context"
	"time"

	"assetfin-backend/internal/domain/asset"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/internal/infrastructure/messaging"
	"assetfin-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
)

// Recorder stores a fresh market valuation for one asset.
type Recorder interface {
	Record(ctx context.Context, a *asset.Asset) error
}

type Failure struct {
	AssetID string `json:"asset_id"`
	Error   string `json:"error"`
}

type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Took      time.Duration `json:"took"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []Failure     `json:"failures,omitempty"`
}

type Job struct {
	assets   asset.Repository
	recorder Recorder
	pub      messaging.Publisher
	metrics  *metrics.Metrics
	log      logging.Logger
	now      func() time.Time
}

type Option func(*Job)

func WithPublisher(p messaging.Publisher) Option { return func(j *Job) { j.pub = p } }
func WithMetrics(m *metrics.Metrics) Option      { return func(j *Job) { j.metrics = m } }
func WithLogger(l logging.Logger) Option         { return func(j *Job) { j.log = l } }
func WithClock(now func() time.Time) Option      { return func(j *Job) { j.now = now } }

func NewJob(assets asset.Repository, rec Recorder, opts ...Option) *Job {
	j := &Job{assets: assets, recorder: rec, pub: messaging.NopPublisher{}, log: logging.NewNop(), now: time.Now}
	for _, o := range opts {
		o(j)
	}
	return j
}

// RefreshAllValuations records a new valuation for every active asset, one at
// a time. A failing asset is noted in the report and the run moves on. A
// cancelled ctx ends the run early; the assets not reached are not counted.
func (j *Job) RefreshAllValuations(ctx context.Context) Report {
	rep := Report{RunID: uuid.NewString(), StartedAt: j.now().UTC()}
	log := j.log.With(logging.String("run_id", rep.RunID))

	assets, err := j.assets.ListActive(ctx)
	if err != nil {
		log.Error("valuation refresh: listing assets failed", logging.Err(err))
		rep.Failures = append(rep.Failures, Failure{Error: err.Error()})
		return rep
	}
	log.Info("valuation refresh started", logging.Int("assets", len(assets)))

	for i := range assets {
		if ctx.Err() != nil {
			log.Warn("valuation refresh interrupted", logging.Int("remaining", len(assets)-i), logging.Err(ctx.Err()))
			break
		}
		a := &assets[i]
		rep.Total++
		err := j.recorder.Record(ctx, a)
		j.metrics.RefreshAsset(err)
		if err != nil {
			rep.Failed++
			rep.Failures = append(rep.Failures, Failure{AssetID: a.AssetID, Error: err.Error()})
			log.Warn("asset valuation failed", logging.String("asset_id", a.AssetID), logging.Err(err))
			continue
		}
		rep.Succeeded++
	}

	rep.Took = j.now().UTC().Sub(rep.StartedAt)
	j.metrics.RefreshDone(rep.Took)
	log.Info("valuation refresh finished",
		logging.Int("total", rep.Total),
		logging.Int("succeeded", rep.Succeeded),
		logging.Int("failed", rep.Failed),
		logging.Duration("took", rep.Took))

	err = j.pub.Publish(ctx, messaging.Event{
		Type:      messaging.EventValuationRefreshed,
		SubjectID: rep.RunID,
		Data:      map[string]int{"total": rep.Total, "succeeded": rep.Succeeded, "failed": rep.Failed},
	})
	if err != nil {
		log.Warn("refresh event dropped", logging.Err(err))
	}
	return rep
}
