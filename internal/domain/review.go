package domain

import "time"

type Review struct {
	ID             int64
	BrandID        int64
	ExternalID     string
	Rating         int
	Title          *string
	Text           *string
	TextTranslated *string // filled by an out-of-band translation job
	AuthorName     *string
	AuthorID       *string
	AuthorCountry  *string
	AuthorReviews  *int64
	ReviewDate     *time.Time
	ExperienceDate *time.Time
	Verified       bool
	Language       *string
	ReplyMessage   *string
	ReplyDate      *time.Time
	Likes          int
	Source         *string
	IsEdited       bool // inferred from the presence of an update timestamp
}

// Sentiment buckets partition reviews by rating. The three buckets are
// exhaustive and mutually exclusive: counts always sum to the total.
type Sentiment int

const (
	Positive Sentiment = iota // rating >= 4
	Neutral                   // rating == 3
	Negative                  // rating <= 2
)

func SentimentOf(rating int) Sentiment {
	switch {
	case rating >= 4:
		return Positive
	case rating == 3:
		return Neutral
	default:
		return Negative
	}
}

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	default:
		return "negative"
	}
}
