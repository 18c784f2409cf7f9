package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trustwatch/internal/adapters/observability"
	"trustwatch/internal/domain"
)

// breakdownKeep bounds the per-week language and country tables.
const breakdownKeep = 10

// ReportService derives weekly snapshots from stored reviews. Nothing is
// persisted: the same inputs always rebuild the same report.
type ReportService struct {
	repo domain.BrandRepository
	log  zerolog.Logger

	engineOnce sync.Once
	engine     *ThemeEngine
	engineErr  error
}

func NewReportService(repo domain.BrandRepository, log zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, log: log}
}

// BuildWeekly computes one brand-week. A brand missing from storage returns
// ErrBrandNotFound; a week with zero reviews returns ErrEmptyWeek. Both are
// null-report outcomes for the caller, not run-stopping failures.
func (s *ReportService) BuildWeekly(ctx context.Context, dom string, week domain.Week) (domain.WeeklyReport, error) {
	b, err := s.repo.GetBrand(ctx, dom)
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	cur, err := s.repo.ReviewsInWindow(ctx, b.ID, week.Start(), week.End())
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	if len(cur) == 0 {
		return domain.WeeklyReport{}, fmt.Errorf("%w: %s %s", domain.ErrEmptyWeek, dom, week)
	}
	prev, err := s.repo.ReviewsInWindow(ctx, b.ID, week.Start().AddDate(0, 0, -7), week.Start())
	if err != nil {
		return domain.WeeklyReport{}, err
	}

	eng, err := s.themeEngine(ctx)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	mentions, err := s.repo.ListMentions(ctx, b.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("brand", dom).Msg("mentions lookup failed")
		mentions = nil
	}

	r := assembleReport(b, week, aggregateWeek(cur, prev), eng.Extract(cur), mentions)
	observability.ObserveReport(dom)
	return r, nil
}

// themeEngine compiles the dictionary on first use. The topics table is
// read-only at runtime, so one compilation serves the whole invocation.
func (s *ReportService) themeEngine(ctx context.Context) (*ThemeEngine, error) {
	s.engineOnce.Do(func() {
		topics, err := s.repo.ListTopics(ctx)
		if err != nil {
			s.engineErr = err
			return
		}
		s.engine = NewThemeEngine(topics)
	})
	return s.engine, s.engineErr
}

// weekAgg holds the raw tallies for one week plus the prior-week comparison
// inputs. All derived percentages live in assembleReport.
type weekAgg struct {
	total     int
	avg       *float64
	prevTotal int
	prevAvg   *float64

	positive, neutral, negative int
	dist                        [5]int // dist[0] = 1 star

	withReply int
	edited    int
	respHours *float64

	verified, organic int

	byLanguage map[string]int
	byCountry  map[string]int
}

func aggregateWeek(cur, prev []domain.Review) weekAgg {
	agg := weekAgg{
		total:      len(cur),
		prevTotal:  len(prev),
		byLanguage: make(map[string]int),
		byCountry:  make(map[string]int),
	}

	ratingSum := 0
	respSum := 0.0
	respN := 0
	for _, rv := range cur {
		ratingSum += rv.Rating
		switch domain.SentimentOf(rv.Rating) {
		case domain.Positive:
			agg.positive++
		case domain.Neutral:
			agg.neutral++
		default:
			agg.negative++
		}
		if rv.Rating >= 1 && rv.Rating <= 5 {
			agg.dist[rv.Rating-1]++
		}
		if rv.ReplyMessage != nil {
			agg.withReply++
		}
		if rv.IsEdited {
			agg.edited++
		}
		// response latency needs both endpoints; reviews lacking either are
		// excluded from the average, not counted as zero
		if rv.ReplyDate != nil && rv.ReviewDate != nil {
			respSum += rv.ReplyDate.Sub(*rv.ReviewDate).Hours()
			respN++
		}
		if rv.Verified {
			agg.verified++
		} else {
			agg.organic++
		}
		if rv.Language != nil {
			agg.byLanguage[*rv.Language]++
		}
		if rv.AuthorCountry != nil {
			agg.byCountry[*rv.AuthorCountry]++
		}
	}
	if agg.total > 0 {
		v := round2(float64(ratingSum) / float64(agg.total))
		agg.avg = &v
	}
	if respN > 0 {
		v := respSum / float64(respN)
		agg.respHours = &v
	}
	if agg.prevTotal > 0 {
		sum := 0
		for _, rv := range prev {
			sum += rv.Rating
		}
		v := round2(float64(sum) / float64(agg.prevTotal))
		agg.prevAvg = &v
	}
	return agg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func assembleReport(b domain.Brand, week domain.Week, agg weekAgg, themes map[domain.Sentiment][]domain.ThemeCount, mentions []string) domain.WeeklyReport {
	name := b.Domain
	if b.DisplayName != nil && *b.DisplayName != "" {
		name = *b.DisplayName
	}
	if mentions == nil {
		mentions = []string{}
	}
	categories := b.Categories
	if categories == nil {
		categories = []string{}
	}

	vol := domain.VolumeStats{
		TotalThisWeek: agg.total,
		TotalLastWeek: agg.prevTotal,
		WoWChange:     agg.total - agg.prevTotal,
		ByLanguage:    topLanguages(agg.byLanguage, breakdownKeep),
		ByCountry:     topCountries(agg.byCountry, breakdownKeep),
		BySource: domain.SourceSplit{
			VerifiedInvited: agg.verified,
			Organic:         agg.organic,
		},
	}
	// never divide by a zero previous week
	if agg.prevTotal > 0 {
		pct := round2(float64(agg.total-agg.prevTotal) / float64(agg.prevTotal) * 100)
		vol.WoWChangePct = &pct
	}

	rating := domain.RatingStats{AvgThisWeek: agg.avg, AvgLastWeek: agg.prevAvg}
	if agg.avg != nil && agg.prevAvg != nil {
		d := round2(*agg.avg - *agg.prevAvg)
		rating.WoWChange = &d
	}

	resp := domain.ResponseStats{
		WithResponse:    agg.withReply,
		Edited:          agg.edited,
		WithoutResponse: agg.total - agg.withReply,
	}
	if agg.total > 0 {
		resp.ResponseRatePct = round2(float64(agg.withReply) / float64(agg.total) * 100)
	}
	if agg.respHours != nil {
		h := round2(*agg.respHours)
		d := round2(*agg.respHours / 24)
		resp.AvgResponseHours = &h
		resp.AvgResponseDays = &d
	}

	return domain.WeeklyReport{
		Company: domain.CompanyBlock{
			BrandName:           name,
			Domain:              b.Domain,
			BusinessID:          b.BusinessID,
			Website:             b.WebsiteURL,
			LogoURL:             b.LogoURL,
			TotalReviewsAllTime: b.TotalReviews,
			TrustScore:          b.TrustScore,
			Stars:               b.Stars,
			IsClaimed:           b.IsClaimed,
			Categories:          categories,
			TopMentionsOverall:  mentions,
		},
		Metadata: domain.ReportMetadata{
			GeneratedAt: time.Now().UTC(),
			ISOWeek:     week.String(),
			WeekStart:   week.Start().Format("2006-01-02"),
			WeekEnd:     week.End().AddDate(0, 0, -1).Format("2006-01-02"),
		},
		Stats: domain.WeekStats{
			Volume: vol,
			Rating: rating,
			Sentiment: domain.SentimentStats{
				Positive: bucket(agg.positive, agg.total),
				Neutral:  bucket(agg.neutral, agg.total),
				Negative: bucket(agg.negative, agg.total),
			},
			Distribution: domain.RatingDistribution{
				FiveStars:  agg.dist[4],
				FourStars:  agg.dist[3],
				ThreeStars: agg.dist[2],
				TwoStars:   agg.dist[1],
				OneStar:    agg.dist[0],
			},
			Response: resp,
			Content: domain.ContentStats{
				PositiveThemes: themes[domain.Positive],
				NeutralThemes:  themes[domain.Neutral],
				NegativeThemes: themes[domain.Negative],
			},
		},
	}
}

func bucket(count, total int) domain.SentimentBucket {
	b := domain.SentimentBucket{Count: count}
	if total > 0 {
		b.Percentage = round2(float64(count) / float64(total) * 100)
	}
	return b
}

func topLanguages(in map[string]int, n int) map[string]int {
	if len(in) <= n {
		return in
	}
	type kv struct {
		k string
		v int
	}
	all := make([]kv, 0, len(in))
	for k, v := range in {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	out := make(map[string]int, n)
	for _, e := range all[:n] {
		out[e.k] = e.v
	}
	return out
}

func topCountries(in map[string]int, n int) []domain.CountryCount {
	all := make([]domain.CountryCount, 0, len(in))
	for k, v := range in {
		all = append(all, domain.CountryCount{Country: k, Count: v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Country < all[j].Country
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
