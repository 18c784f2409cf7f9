package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"trustwatch/internal/domain"
)

// Runner drives multi-brand passes. Brands are processed in roster order and
// failures are isolated: one broken brand never stops the rest of the run.
type Runner struct {
	sync    *SyncService
	reports *ReportService
	repo    domain.BrandRepository
	sink    domain.ReportSink
	cache   domain.Cache // optional, nil disables invalidation
	log     zerolog.Logger
	sinkRL  *rate.Limiter // optional pacing for the publish side
}

func NewRunner(sync *SyncService, reports *ReportService, repo domain.BrandRepository, sink domain.ReportSink, cache domain.Cache, log zerolog.Logger, sinkEvery time.Duration) *Runner {
	r := &Runner{
		sync:    sync,
		reports: reports,
		repo:    repo,
		sink:    sink,
		cache:   cache,
		log:     log,
	}
	if sinkEvery > 0 {
		r.sinkRL = rate.NewLimiter(rate.Every(sinkEvery), 1)
	}
	return r
}

// RunSync refreshes every brand on the roster. A cancelled context parks the
// remaining brands as skipped instead of failing them.
func (r *Runner) RunSync(ctx context.Context, brands []domain.BrandRef, mode domain.SyncMode) domain.RunSummary {
	sum := domain.RunSummary{RunID: uuid.NewString()}
	log := r.log.With().Str("run_id", sum.RunID).Logger()
	log.Info().Int("brands", len(brands)).Str("mode", string(mode)).Msg("sync run started")

	for _, ref := range brands {
		if ctx.Err() != nil {
			sum.Skipped = append(sum.Skipped, ref.Domain)
			continue
		}
		if _, err := r.syncOne(ctx, ref, mode); err != nil {
			log.Error().Err(err).Str("brand", ref.Domain).Msg("brand sync failed")
			sum.Failed = append(sum.Failed, ref.Domain)
			continue
		}
		sum.Succeeded = append(sum.Succeeded, ref.Domain)
	}

	log.Info().
		Int("succeeded", len(sum.Succeeded)).
		Int("skipped", len(sum.Skipped)).
		Int("failed", len(sum.Failed)).
		Msg("sync run finished")
	return sum
}

// RunReports publishes the given weeks for every brand. Brand-weeks with no
// data are skipped, not failed; only real errors count against the run.
func (r *Runner) RunReports(ctx context.Context, brands []domain.BrandRef, weeks []domain.Week) domain.RunSummary {
	sum := domain.RunSummary{RunID: uuid.NewString()}
	log := r.log.With().Str("run_id", sum.RunID).Logger()
	log.Info().Int("brands", len(brands)).Int("weeks", len(weeks)).Msg("report run started")

	for _, ref := range brands {
		r.reportWeeks(ctx, log, ref.Domain, weeks, &sum)
	}

	log.Info().
		Int("succeeded", len(sum.Succeeded)).
		Int("skipped", len(sum.Skipped)).
		Int("failed", len(sum.Failed)).
		Msg("report run finished")
	return sum
}

// RunFull is the scheduled pass: sync each brand, then publish its last
// nWeeks of reports anchored on the newest review it has.
func (r *Runner) RunFull(ctx context.Context, brands []domain.BrandRef, mode domain.SyncMode, nWeeks int) domain.RunSummary {
	sum := domain.RunSummary{RunID: uuid.NewString()}
	log := r.log.With().Str("run_id", sum.RunID).Logger()
	log.Info().Int("brands", len(brands)).Int("weeks", nWeeks).Msg("full run started")

	for _, ref := range brands {
		if ctx.Err() != nil {
			sum.Skipped = append(sum.Skipped, ref.Domain)
			continue
		}
		if _, err := r.syncOne(ctx, ref, mode); err != nil {
			log.Error().Err(err).Str("brand", ref.Domain).Msg("brand sync failed")
			sum.Failed = append(sum.Failed, ref.Domain)
			continue
		}
		sum.Succeeded = append(sum.Succeeded, ref.Domain)
		if nWeeks > 0 {
			r.reportWeeks(ctx, log, ref.Domain, r.recentWeeks(ctx, ref.Domain, nWeeks), &sum)
		}
	}

	log.Info().
		Int("succeeded", len(sum.Succeeded)).
		Int("skipped", len(sum.Skipped)).
		Int("failed", len(sum.Failed)).
		Msg("full run finished")
	return sum
}

func (r *Runner) syncOne(ctx context.Context, ref domain.BrandRef, mode domain.SyncMode) (domain.SyncStats, error) {
	stats, err := r.sync.SyncBrand(ctx, ref, mode)
	if err != nil {
		return stats, err
	}
	r.invalidate(ctx, ref.Domain)
	return stats, nil
}

func (r *Runner) reportWeeks(ctx context.Context, log zerolog.Logger, dom string, weeks []domain.Week, sum *domain.RunSummary) {
	for _, wk := range weeks {
		tag := fmt.Sprintf("%s %s", dom, wk)
		if ctx.Err() != nil {
			sum.Skipped = append(sum.Skipped, tag)
			continue
		}

		rep, err := r.reports.BuildWeekly(ctx, dom, wk)
		switch {
		case errors.Is(err, domain.ErrEmptyWeek) || errors.Is(err, domain.ErrBrandNotFound):
			log.Info().Str("brand", dom).Stringer("week", wk).Msg("no data for week, skipping report")
			sum.Skipped = append(sum.Skipped, tag)
			continue
		case err != nil:
			log.Error().Err(err).Str("brand", dom).Stringer("week", wk).Msg("report build failed")
			sum.Failed = append(sum.Failed, tag)
			continue
		}

		if r.sinkRL != nil {
			if err := r.sinkRL.Wait(ctx); err != nil {
				sum.Skipped = append(sum.Skipped, tag)
				continue
			}
		}
		if err := r.sink.Publish(ctx, rep); err != nil {
			log.Error().Err(err).Str("brand", dom).Stringer("week", wk).Msg("report publish failed")
			sum.Failed = append(sum.Failed, tag)
			continue
		}
		sum.Succeeded = append(sum.Succeeded, tag)
	}
}

// recentWeeks anchors the report window on the brand's newest review so a
// stale brand reports its own trailing weeks, not empty calendar ones.
func (r *Runner) recentWeeks(ctx context.Context, dom string, n int) []domain.Week {
	latest := time.Now().UTC()
	if b, err := r.repo.GetBrand(ctx, dom); err == nil {
		if t, err := r.repo.LatestReviewDate(ctx, b.ID); err == nil && t != nil {
			latest = *t
		}
	}
	return domain.RecentWeeks(latest, n)
}

// invalidate drops the cache entries a fresh sync can change: the brand
// snapshot plus the reports for the two most recent weeks.
func (r *Runner) invalidate(ctx context.Context, dom string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, "brand:"+dom)
	for _, wk := range domain.RecentWeeks(time.Now().UTC(), 2) {
		_ = r.cache.Del(ctx, fmt.Sprintf("report:%s:%s", dom, wk))
	}
}
