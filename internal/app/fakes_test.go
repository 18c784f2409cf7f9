package app_test

import (
	"context"
	"encoding/json"
	"time"

	"trustwatch/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	brand    domain.Brand
	brandErr error
	count    int64
	existing map[string]struct{}
	windows  map[time.Time][]domain.Review // keyed by window start (UTC)
	topics   []domain.Topic
	mentions []string
	latest   *time.Time

	upserts        []domain.Brand
	batches        [][]domain.Review
	touches        []time.Time
	storedMentions [][]string
	storedTopics   [][]domain.Topic

	nextID      int64
	insertErr   error
	windowErr   error
	mentionsErr error
	topicsErr   error
}

func (f *fakeRepo) UpsertBrand(ctx context.Context, b domain.Brand) (int64, error) {
	f.upserts = append(f.upserts, b)
	if f.nextID == 0 {
		f.nextID = 7
	}
	return f.nextID, nil
}

func (f *fakeRepo) InsertReviews(ctx context.Context, brandID int64, rs []domain.Review) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	batch := make([]domain.Review, len(rs))
	copy(batch, rs)
	f.batches = append(f.batches, batch)
	return int64(len(rs)), nil
}

func (f *fakeRepo) TouchBrandSync(ctx context.Context, brandID int64, at time.Time) error {
	f.touches = append(f.touches, at)
	return nil
}

func (f *fakeRepo) ReplaceMentions(ctx context.Context, brandID int64, mentions []string) error {
	f.storedMentions = append(f.storedMentions, mentions)
	return nil
}

func (f *fakeRepo) ReplaceTopics(ctx context.Context, ts []domain.Topic) error {
	f.storedTopics = append(f.storedTopics, ts)
	return nil
}

func (f *fakeRepo) GetBrand(ctx context.Context, dom string) (domain.Brand, error) {
	if f.brandErr != nil {
		return domain.Brand{}, f.brandErr
	}
	return f.brand, nil
}

func (f *fakeRepo) ExistingReviewIDs(ctx context.Context, brandID int64) (map[string]struct{}, error) {
	if f.existing == nil {
		return map[string]struct{}{}, nil
	}
	return f.existing, nil
}

func (f *fakeRepo) CountReviews(ctx context.Context, brandID int64) (int64, error) {
	return f.count, nil
}

func (f *fakeRepo) ReviewsInWindow(ctx context.Context, brandID int64, from, to time.Time) ([]domain.Review, error) {
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	return f.windows[from.UTC()], nil
}

func (f *fakeRepo) LatestReviewDate(ctx context.Context, brandID int64) (*time.Time, error) {
	return f.latest, nil
}

func (f *fakeRepo) ListMentions(ctx context.Context, brandID int64) ([]string, error) {
	if f.mentionsErr != nil {
		return nil, f.mentionsErr
	}
	return f.mentions, nil
}

func (f *fakeRepo) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	if f.topicsErr != nil {
		return nil, f.topicsErr
	}
	return f.topics, nil
}

// fakeSource serves canned pages and records which pages were requested.
type fakeSource struct {
	pages      map[int]domain.SourcePage
	errs       map[int]error
	domainErrs map[string]error // any fetch for the domain fails

	fetched  []int
	optsSeen []domain.FetchOptions

	mentions      []string
	mentionsErr   error
	mentionsCalls int
}

func (f *fakeSource) FetchPage(ctx context.Context, dom string, page int, opts domain.FetchOptions) (domain.SourcePage, error) {
	f.fetched = append(f.fetched, page)
	f.optsSeen = append(f.optsSeen, opts)
	if err, ok := f.domainErrs[dom]; ok {
		return domain.SourcePage{}, err
	}
	if err, ok := f.errs[page]; ok {
		return domain.SourcePage{}, err
	}
	pg, ok := f.pages[page]
	if !ok {
		return domain.SourcePage{}, domain.ErrEndOfPages
	}
	return pg, nil
}

func (f *fakeSource) FetchMentions(ctx context.Context, businessID string) ([]string, error) {
	f.mentionsCalls++
	if f.mentionsErr != nil {
		return nil, f.mentionsErr
	}
	return f.mentions, nil
}

// fakeCache stores marshalled values, same as the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeSink struct {
	published []domain.WeeklyReport
	err       error
}

func (s *fakeSink) Publish(ctx context.Context, r domain.WeeklyReport) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, r)
	return nil
}

// ---- helpers ----

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func srcReview(id string, rating int, text string) domain.SourceReview {
	return domain.SourceReview{
		ExternalID:  id,
		Rating:      rating,
		Text:        ptr(text),
		PublishedAt: ptr(time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)),
	}
}
