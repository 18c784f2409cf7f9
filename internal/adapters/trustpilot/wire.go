// internal/adapters/trustpilot/wire.go
package trustpilot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trustwatch/internal/domain"
)

// Wire schema for the listing payload, resolved once at the adapter
// boundary. Shape variance in the source (bare strings vs objects,
// several timestamp layouts) is absorbed by flexString and flexTime so
// nothing downstream re-guesses field types.

type pageV1 struct {
	BusinessUnit *businessUnitV1 `json:"businessUnit"`
	Reviews      []reviewV1      `json:"reviews"`
}

type businessUnitV1 struct {
	ID              *string      `json:"id"`
	DisplayName     *string      `json:"displayName"`
	IdentifyingName *string      `json:"identifyingName"`
	NumberOfReviews *int64       `json:"numberOfReviews"`
	TrustScore      *float64     `json:"trustScore"`
	Stars           *float64     `json:"stars"`
	WebsiteURL      *string      `json:"websiteUrl"`
	ProfileImageURL *string      `json:"profileImageUrl"`
	IsClaimed       *bool        `json:"isClaimed"`
	Categories      []flexString `json:"categories"`
}

type reviewV1 struct {
	ID       string      `json:"id"`
	Title    *string     `json:"title"`
	Text     *string     `json:"text"`
	Rating   int         `json:"rating"`
	Language *string     `json:"language"`
	Likes    int         `json:"likes"`
	Source   *string     `json:"source"`
	Labels   *labelsV1   `json:"labels"`
	Dates    *datesV1    `json:"dates"`
	Consumer *consumerV1 `json:"consumer"`
	Reply    *replyV1    `json:"reply"`
}

type labelsV1 struct {
	Verification *verificationV1 `json:"verification"`
}

type verificationV1 struct {
	IsVerified bool `json:"isVerified"`
}

type datesV1 struct {
	PublishedDate   flexTime `json:"publishedDate"`
	UpdatedDate     flexTime `json:"updatedDate"`
	ExperiencedDate flexTime `json:"experiencedDate"`
}

type consumerV1 struct {
	ID              *string `json:"id"`
	DisplayName     *string `json:"displayName"`
	CountryCode     *string `json:"countryCode"`
	NumberOfReviews *int64  `json:"numberOfReviews"`
}

type replyV1 struct {
	Message       *string  `json:"message"`
	PublishedDate flexTime `json:"publishedDate"`
}

type topicsV1 struct {
	Topics []flexString `json:"topics"`
}

// flexString accepts either a bare JSON string or an object carrying a
// "name" field; the source emits both shapes for the same logical value.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*f = flexString(obj.Name)
	return nil
}

// flexTime tolerates the timestamp layouts the source mixes freely:
// RFC 3339 with or without fractional seconds, zoneless, and date-only.
// Null and empty values decode to the zero time.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (f flexTime) ptr() *time.Time {
	if f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

func (p pageV1) toDomain() domain.SourcePage {
	out := domain.SourcePage{}
	if p.BusinessUnit != nil {
		out.Profile = p.BusinessUnit.toProfile()
	}
	out.Reviews = make([]domain.SourceReview, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		out.Reviews = append(out.Reviews, r.toReview())
	}
	return out
}

func (bu businessUnitV1) toProfile() *domain.SourceProfile {
	p := &domain.SourceProfile{
		DisplayName:  bu.DisplayName,
		BusinessID:   bu.ID,
		WebsiteURL:   bu.WebsiteURL,
		TotalReviews: bu.NumberOfReviews,
		TrustScore:   bu.TrustScore,
		Stars:        bu.Stars,
		IsClaimed:    bu.IsClaimed,
	}
	if bu.ProfileImageURL != nil {
		u := *bu.ProfileImageURL
		// the source serves protocol-relative logo URLs
		if strings.HasPrefix(u, "//") {
			u = "https:" + u
		}
		p.LogoURL = &u
	}
	for _, c := range bu.Categories {
		if s := string(c); s != "" {
			p.Categories = append(p.Categories, s)
		}
	}
	return p
}

func (r reviewV1) toReview() domain.SourceReview {
	out := domain.SourceReview{
		ExternalID: r.ID,
		Rating:     r.Rating,
		Title:      r.Title,
		Text:       r.Text,
		Language:   r.Language,
		Likes:      r.Likes,
		Source:     r.Source,
	}
	if out.Source == nil {
		s := "trustpilot"
		out.Source = &s
	}
	if r.Labels != nil && r.Labels.Verification != nil {
		out.Verified = r.Labels.Verification.IsVerified
	}
	if r.Dates != nil {
		out.PublishedAt = r.Dates.PublishedDate.ptr()
		out.UpdatedAt = r.Dates.UpdatedDate.ptr()
		out.ExperiencedAt = r.Dates.ExperiencedDate.ptr()
	}
	if r.Consumer != nil {
		out.AuthorID = r.Consumer.ID
		out.AuthorName = r.Consumer.DisplayName
		out.AuthorCountry = r.Consumer.CountryCode
		out.AuthorReviews = r.Consumer.NumberOfReviews
	}
	if r.Reply != nil {
		out.ReplyMessage = r.Reply.Message
		out.RepliedAt = r.Reply.PublishedDate.ptr()
	}
	return out
}
