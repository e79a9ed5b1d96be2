package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arvind/filmgraph/internal/domain"
)

// ErrAllRowsFailed indicates every per-row update failed, which in practice
// means the store stopped accepting writes mid-run.
var ErrAllRowsFailed = errors.New("enrichment updated no rows")

// MovieEnrichmentStore is the storage contract required by the enrichment job.
type MovieEnrichmentStore interface {
	ScoringInputs(ctx context.Context) ([]domain.ScoringInput, error)
	UpdateEnrichment(ctx context.Context, movieID int, score float64, tier string) error
}

// Report summarizes one enrichment run.
type Report struct {
	Processed int
	Updated   int
	Failed    int
}

// Job recomputes enrichment_score and popularity_tier for every movie in the
// store. Row failures are logged and counted without stopping the batch.
type Job struct {
	store MovieEnrichmentStore
	log   *slog.Logger
	nowFn func() time.Time
}

// NewJob constructs an enrichment Job.
func NewJob(store MovieEnrichmentStore, logger *slog.Logger) *Job {
	return &Job{
		store: store,
		log:   logger,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests and by the
// -year flag of the enrich command).
func (j *Job) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		j.nowFn = nowFn
	}
}

// Run reads scoring inputs for every movie, computes score and tier, and
// writes both back per row. It fails outright only when the input query
// fails or no row could be updated at all.
func (j *Job) Run(ctx context.Context) (Report, error) {
	inputs, err := j.store.ScoringInputs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load scoring inputs: %w", err)
	}

	currentYear := j.nowFn().Year()
	j.log.Info("enriching movies", "count", len(inputs), "year", currentYear)

	report := Report{Processed: len(inputs)}
	for _, input := range inputs {
		score := Score(input.Rating, input.ReleaseYear, input.ActorCount, currentYear)
		tier := Tier(score)

		if err := j.store.UpdateEnrichment(ctx, input.MovieID, score, tier); err != nil {
			j.log.Warn("enrichment update failed", "movie_id", input.MovieID, "error", err)
			report.Failed++
			continue
		}
		j.log.Debug("movie enriched", "movie_id", input.MovieID, "score", score, "tier", tier)
		report.Updated++
	}

	if report.Processed > 0 && report.Updated == 0 {
		return report, ErrAllRowsFailed
	}
	return report, nil
}
