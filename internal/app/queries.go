package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trustwatch/internal/domain"
)

// QueryService fronts the read endpoints with cache-aside lookups. Reports
// for closed weeks never change once the week's reviews are in, so a plain
// TTL is enough; no explicit invalidation is needed on the read path.
type QueryService struct {
	repo     domain.BrandRepository
	reports  *ReportService
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.BrandRepository, rs *ReportService, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, reports: rs, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetBrand(ctx context.Context, dom string) (domain.Brand, error) {
	key := fmt.Sprintf("brand:%s", dom)
	var b domain.Brand
	if ok, _ := s.cache.Get(ctx, key, &b); ok {
		return b, nil
	}
	b, err := s.repo.GetBrand(ctx, dom)
	if err != nil {
		return domain.Brand{}, err
	}
	_ = s.cache.Set(ctx, key, b, int(s.cacheTTL.Seconds()))
	return b, nil
}

func (s *QueryService) WeeklyReport(ctx context.Context, dom string, week domain.Week) (domain.WeeklyReport, error) {
	key := fmt.Sprintf("report:%s:%s", dom, week)
	var out domain.WeeklyReport
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	out, err := s.reports.BuildWeekly(ctx, dom, week)
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	// optional size guard
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
