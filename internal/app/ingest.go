package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trustwatch/internal/adapters/observability"
	"trustwatch/internal/domain"
)

// earlyStopPages is how many consecutive pages may contribute zero unseen
// reviews before an incremental sync stops. A bounded heuristic, not a
// completeness guarantee: reviews older than the source's date filter are
// never revisited.
const earlyStopPages = 2

type SyncOptions struct {
	// BatchSize bounds the write buffer; a full buffer flushes immediately.
	BatchSize int
	// MaxPages caps pagination per brand. 0 means unbounded.
	MaxPages int
	// Languages scopes the listing, defaults to "all".
	Languages string
	// DateFilter is applied in incremental mode, defaults to "last30days".
	DateFilter string
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.Languages == "" {
		o.Languages = "all"
	}
	if o.DateFilter == "" {
		o.DateFilter = "last30days"
	}
	return o
}

// SyncService pulls one brand's listing pages in order, filters out reviews
// already stored, and writes the remainder in idempotent batches.
type SyncService struct {
	source domain.SourceClient
	repo   domain.BrandRepository
	log    zerolog.Logger
	opts   SyncOptions
}

func NewSyncService(src domain.SourceClient, repo domain.BrandRepository, log zerolog.Logger, opts SyncOptions) *SyncService {
	return &SyncService{source: src, repo: repo, log: log, opts: opts.withDefaults()}
}

// SyncBrand runs one full pass for a brand. Pages are fetched strictly in
// increasing order; a transient source failure ends the pass early and keeps
// what was already stored (stats.Partial reports this). The brand's
// last-synced timestamp is only advanced when the pass finishes.
func (s *SyncService) SyncBrand(ctx context.Context, ref domain.BrandRef, mode domain.SyncMode) (domain.SyncStats, error) {
	stats := domain.SyncStats{Brand: ref.Domain}

	resolved, err := s.resolveMode(ctx, ref.Domain, mode)
	if err != nil {
		return stats, err
	}
	stats.Mode = resolved

	opts := domain.FetchOptions{Languages: s.opts.Languages}
	if resolved == domain.SyncIncremental {
		opts.DateFilter = s.opts.DateFilter
	}

	// Page 1 carries the profile; without it there is no brand row to hang
	// reviews on, so any page-1 failure fails the brand.
	first, err := s.source.FetchPage(ctx, ref.Domain, 1, opts)
	if err != nil {
		if errors.Is(err, domain.ErrEndOfPages) {
			return stats, fmt.Errorf("%w: %s not listed at source", domain.ErrBrandNotFound, ref.Domain)
		}
		return stats, err
	}

	brandID, err := s.repo.UpsertBrand(ctx, mapProfile(ref.Domain, ref.Name, first.Profile))
	if err != nil {
		return stats, err
	}

	known, err := s.repo.ExistingReviewIDs(ctx, brandID)
	if err != nil {
		return stats, err
	}
	seen := make(map[string]struct{}, len(known))

	buffer := make([]domain.Review, 0, s.opts.BatchSize)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		n, err := s.repo.InsertReviews(ctx, brandID, buffer)
		if err != nil {
			return err
		}
		stats.NewReviews += n
		stats.Flushes++
		buffer = buffer[:0]
		return nil
	}

	zeroNovel := 0
	page := 1
	current := first
pages:
	for {
		stats.PagesFetched++
		novel := 0
		for _, sr := range current.Reviews {
			stats.ReviewsSeen++
			if _, dup := seen[sr.ExternalID]; dup {
				stats.Duplicates++
				continue
			}
			seen[sr.ExternalID] = struct{}{}
			if _, dup := known[sr.ExternalID]; dup {
				stats.Duplicates++
				continue
			}
			novel++
			buffer = append(buffer, mapSourceReview(sr))
			if len(buffer) >= s.opts.BatchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}

		if len(current.Reviews) == 0 {
			break // empty page: normal end
		}
		if resolved == domain.SyncIncremental {
			if novel == 0 {
				zeroNovel++
				if zeroNovel >= earlyStopPages {
					stats.EarlyStopped = true
					break
				}
			} else {
				zeroNovel = 0
			}
		}
		if s.opts.MaxPages > 0 && page >= s.opts.MaxPages {
			break
		}

		page++
		next, err := s.source.FetchPage(ctx, ref.Domain, page, opts)
		switch {
		case err == nil:
			current = next
		case errors.Is(err, domain.ErrEndOfPages):
			break pages
		case errors.Is(err, domain.ErrSourceUnavailable):
			// keep what was already fetched
			s.log.Warn().Err(err).Str("brand", ref.Domain).Int("page", page).
				Msg("transient fetch failure, keeping partial results")
			stats.Partial = true
			break pages
		case errors.Is(err, domain.ErrMalformedPage):
			// surface the page, but don't drop buffered reviews with it
			if ferr := flush(); ferr != nil {
				return stats, ferr
			}
			return stats, err
		default:
			return stats, err
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	// Mentions ride along on the profile's business id; losing them never
	// fails a sync.
	if first.Profile != nil && first.Profile.BusinessID != nil {
		if ms, err := s.source.FetchMentions(ctx, *first.Profile.BusinessID); err != nil {
			s.log.Warn().Err(err).Str("brand", ref.Domain).Msg("mentions fetch failed")
		} else if len(ms) > 0 {
			if err := s.repo.ReplaceMentions(ctx, brandID, ms); err != nil {
				s.log.Warn().Err(err).Str("brand", ref.Domain).Msg("mentions store failed")
			}
		}
	}

	if err := s.repo.TouchBrandSync(ctx, brandID, time.Now().UTC()); err != nil {
		return stats, err
	}

	observability.ObserveSync(ref.Domain, string(resolved), stats.PagesFetched, stats.NewReviews)
	s.log.Info().
		Str("brand", ref.Domain).
		Str("mode", string(resolved)).
		Int("pages", stats.PagesFetched).
		Int("seen", stats.ReviewsSeen).
		Int64("new", stats.NewReviews).
		Bool("early_stop", stats.EarlyStopped).
		Bool("partial", stats.Partial).
		Msg("brand synced")
	return stats, nil
}

// resolveMode turns auto into full or incremental by probing storage: a
// brand with stored reviews only needs the recent window.
func (s *SyncService) resolveMode(ctx context.Context, dom string, mode domain.SyncMode) (domain.SyncMode, error) {
	if mode != "" && mode != domain.SyncAuto {
		return mode, nil
	}
	b, err := s.repo.GetBrand(ctx, dom)
	if err != nil {
		if errors.Is(err, domain.ErrBrandNotFound) {
			return domain.SyncFull, nil
		}
		return "", err
	}
	n, err := s.repo.CountReviews(ctx, b.ID)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return domain.SyncIncremental, nil
	}
	return domain.SyncFull, nil
}
