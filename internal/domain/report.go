package domain

import "time"

// WeeklyReport is the object handed to a presentation sink. It is derived
// per request from stored reviews and never persisted.
type WeeklyReport struct {
	Company  CompanyBlock   `json:"company"`
	Metadata ReportMetadata `json:"report_metadata"`
	Stats    WeekStats      `json:"week_stats"`
}

type CompanyBlock struct {
	BrandName           string   `json:"brand_name"`
	Domain              string   `json:"domain"`
	BusinessID          *string  `json:"business_id"`
	Website             *string  `json:"website"`
	LogoURL             *string  `json:"logo_url"`
	TotalReviewsAllTime *int64   `json:"total_reviews_all_time"`
	TrustScore          *float64 `json:"trust_score"`
	Stars               *float64 `json:"stars"`
	IsClaimed           *bool    `json:"is_claimed"`
	Categories          []string `json:"categories"`
	TopMentionsOverall  []string `json:"top_mentions_overall"`
}

type ReportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	ISOWeek     string    `json:"iso_week"`
	WeekStart   string    `json:"week_start"` // Monday, YYYY-MM-DD
	WeekEnd     string    `json:"week_end"`   // Sunday, YYYY-MM-DD (display form of the exclusive bound)
}

type WeekStats struct {
	Volume       VolumeStats        `json:"review_volume"`
	Rating       RatingStats        `json:"rating_performance"`
	Sentiment    SentimentStats     `json:"sentiment"`
	Distribution RatingDistribution `json:"rating_distribution"`
	Response     ResponseStats      `json:"response_performance"`
	Content      ContentStats       `json:"content_analysis"`
}

type VolumeStats struct {
	TotalThisWeek int            `json:"total_this_week"`
	TotalLastWeek int            `json:"total_last_week"`
	WoWChange     int            `json:"wow_change"`
	WoWChangePct  *float64       `json:"wow_change_pct"`
	ByLanguage    map[string]int `json:"by_language"`
	ByCountry     []CountryCount `json:"by_country"`
	BySource      SourceSplit    `json:"by_source"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"review_count"`
}

type SourceSplit struct {
	VerifiedInvited int `json:"verified_invited"`
	Organic         int `json:"organic"`
}

type RatingStats struct {
	AvgThisWeek *float64 `json:"avg_rating_this_week"`
	AvgLastWeek *float64 `json:"avg_rating_last_week"`
	WoWChange   *float64 `json:"wow_change"`
}

type SentimentStats struct {
	Positive SentimentBucket `json:"positive"`
	Neutral  SentimentBucket `json:"neutral"`
	Negative SentimentBucket `json:"negative"`
}

type SentimentBucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type RatingDistribution struct {
	FiveStars  int `json:"5_stars"`
	FourStars  int `json:"4_stars"`
	ThreeStars int `json:"3_stars"`
	TwoStars   int `json:"2_stars"`
	OneStar    int `json:"1_star"`
}

type ResponseStats struct {
	WithResponse     int      `json:"reviews_with_response"`
	Edited           int      `json:"reviews_edited"`
	ResponseRatePct  float64  `json:"response_rate_pct"`
	WithoutResponse  int      `json:"reviews_without_response"`
	AvgResponseHours *float64 `json:"avg_response_time_hours"`
	AvgResponseDays  *float64 `json:"avg_response_time_days"`
}

type ContentStats struct {
	PositiveThemes []ThemeCount `json:"positive_themes"`
	NeutralThemes  []ThemeCount `json:"neutral_themes"`
	NegativeThemes []ThemeCount `json:"negative_themes"`
}

// ThemeCount ranks a topic by the number of distinct reviews mentioning it.
type ThemeCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
