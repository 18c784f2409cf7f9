package domain

import (
	"context"
	"time"
)

type BrandRepository interface {
	// Write paths
	UpsertBrand(ctx context.Context, b Brand) (int64, error)
	InsertReviews(ctx context.Context, brandID int64, rs []Review) (int64, error)
	TouchBrandSync(ctx context.Context, brandID int64, at time.Time) error
	ReplaceMentions(ctx context.Context, brandID int64, mentions []string) error
	ReplaceTopics(ctx context.Context, ts []Topic) error

	// Read paths
	GetBrand(ctx context.Context, domain string) (Brand, error)
	ExistingReviewIDs(ctx context.Context, brandID int64) (map[string]struct{}, error)
	CountReviews(ctx context.Context, brandID int64) (int64, error)
	ReviewsInWindow(ctx context.Context, brandID int64, from, to time.Time) ([]Review, error)
	LatestReviewDate(ctx context.Context, brandID int64) (*time.Time, error)
	ListMentions(ctx context.Context, brandID int64) ([]string, error)
	ListTopics(ctx context.Context) ([]Topic, error)
}

type SourceClient interface {
	// FetchPage retrieves one listing page, starting at 1. Page 1 also carries
	// the business profile. A page past the end returns ErrEndOfPages.
	FetchPage(ctx context.Context, domain string, page int, opts FetchOptions) (SourcePage, error)
	// FetchMentions retrieves the platform's topic mentions for a business.
	// A missing mentions document yields an empty slice, not an error.
	FetchMentions(ctx context.Context, businessID string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReportSink publishes a finished weekly report.
type ReportSink interface {
	Publish(ctx context.Context, r WeeklyReport) error
}

// Read models & queries

// FetchOptions narrows what a listing page returns.
type FetchOptions struct {
	DateFilter string // passed through to the source, e.g. "last30days"
	Languages  string // listing scope, defaults to "all"
}

type SourcePage struct {
	Reviews []SourceReview
	Profile *SourceProfile // page 1 only
}

// SourceReview is a review as the source reports it, before it is tied to a
// stored brand.
type SourceReview struct {
	ExternalID    string
	Rating        int
	Title         *string
	Text          *string
	Language      *string
	AuthorName    *string
	AuthorID      *string
	AuthorCountry *string
	AuthorReviews *int64
	PublishedAt   *time.Time
	UpdatedAt     *time.Time
	ExperiencedAt *time.Time
	Verified      bool
	ReplyMessage  *string
	RepliedAt     *time.Time
	Likes         int
	Source        *string
}

// SourceProfile is the business unit header carried on page 1.
type SourceProfile struct {
	DisplayName  *string
	BusinessID   *string
	WebsiteURL   *string
	LogoURL      *string
	TotalReviews *int64
	TrustScore   *float64
	Stars        *float64
	IsClaimed    *bool
	Categories   []string
}

// SyncMode selects how far back a sync reaches.
type SyncMode string

const (
	// SyncAuto picks SyncIncremental when the brand already has stored
	// reviews and SyncFull otherwise.
	SyncAuto        SyncMode = "auto"
	SyncFull        SyncMode = "full"
	SyncIncremental SyncMode = "incremental"
)

// SyncStats summarises a single brand sync pass.
type SyncStats struct {
	Brand        string
	Mode         SyncMode
	PagesFetched int
	ReviewsSeen  int
	NewReviews   int64
	Duplicates   int
	Flushes      int
	EarlyStopped bool
	// Partial is set when a transient source failure ended the pass after at
	// least one page was already stored.
	Partial bool
}

// BrandRef names a brand to operate on.
type BrandRef struct {
	Domain string
	Name   string
}

// RunSummary aggregates a pipeline pass over several brands.
type RunSummary struct {
	RunID     string
	Succeeded []string
	Skipped   []string
	Failed    []string
}
