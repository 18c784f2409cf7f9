package domain

import "time"

type Brand struct {
	ID           int64      `json:"id"`
	Domain       string     `json:"domain"`
	DisplayName  *string    `json:"display_name"`
	BusinessID   *string    `json:"business_id"`
	WebsiteURL   *string    `json:"website"`
	LogoURL      *string    `json:"logo_url"`
	TotalReviews *int64     `json:"total_reviews"`
	TrustScore   *float64   `json:"trust_score"`
	Stars        *float64   `json:"stars"`
	IsClaimed    *bool      `json:"is_claimed"`
	Categories   []string   `json:"categories"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
}

// Topic is one canonical concept from the imported dictionary. SearchTerms
// are lowercase literals (singular/plural variants included) matched as
// whole words against review text.
type Topic struct {
	ID          int64
	Key         string
	DisplayName string
	SearchTerms []string
}
