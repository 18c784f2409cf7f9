package app

import "trustwatch/internal/domain"

// mapProfile folds page-1 profile fields into a Brand row. fallbackName is
// the roster display name, used when the source omits one.
func mapProfile(dom, fallbackName string, p *domain.SourceProfile) domain.Brand {
	b := domain.Brand{Domain: dom}
	if fallbackName != "" {
		n := fallbackName
		b.DisplayName = &n
	}
	if p == nil {
		return b
	}
	if p.DisplayName != nil {
		b.DisplayName = p.DisplayName
	}
	b.BusinessID = p.BusinessID
	b.WebsiteURL = p.WebsiteURL
	b.LogoURL = p.LogoURL
	b.TotalReviews = p.TotalReviews
	b.TrustScore = p.TrustScore
	b.Stars = p.Stars
	b.IsClaimed = p.IsClaimed
	b.Categories = p.Categories
	return b
}

// mapSourceReview converts a fetched review into its stored form. The edited
// flag is inferred from the presence of an update timestamp.
func mapSourceReview(sr domain.SourceReview) domain.Review {
	return domain.Review{
		ExternalID:     sr.ExternalID,
		Rating:         sr.Rating,
		Title:          sr.Title,
		Text:           sr.Text,
		AuthorName:     sr.AuthorName,
		AuthorID:       sr.AuthorID,
		AuthorCountry:  sr.AuthorCountry,
		AuthorReviews:  sr.AuthorReviews,
		ReviewDate:     sr.PublishedAt,
		ExperienceDate: sr.ExperiencedAt,
		Verified:       sr.Verified,
		Language:       sr.Language,
		ReplyMessage:   sr.ReplyMessage,
		ReplyDate:      sr.RepliedAt,
		Likes:          sr.Likes,
		Source:         sr.Source,
		IsEdited:       sr.UpdatedAt != nil,
	}
}
