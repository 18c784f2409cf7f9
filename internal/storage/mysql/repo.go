package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"trustwatch/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertBrand(ctx context.Context, b domain.Brand) (int64, error) {
	var cats any
	if len(b.Categories) > 0 {
		bs, err := json.Marshal(b.Categories)
		if err != nil {
			return 0, err
		}
		cats = string(bs)
	}
	res, err := r.db.ExecContext(ctx, upsertBrandSQL,
		b.Domain,
		valStr(b.DisplayName),
		valStr(b.BusinessID),
		valStr(b.WebsiteURL),
		valStr(b.LogoURL),
		valInt64(b.TotalReviews),
		valF64(b.TrustScore),
		valF64(b.Stars),
		valBool(b.IsClaimed),
		cats,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertReviews writes one batch in a single statement. Rows whose
// (brand_id, external_id) already exists are ignored; the return value is
// the number of rows actually inserted.
func (r *Repo) InsertReviews(ctx context.Context, brandID int64, rs []domain.Review) (int64, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*19)
	for _, rv := range rs {
		values = append(values, reviewRowPlaceholders)
		args = append(args,
			brandID,
			rv.ExternalID,
			rv.Rating,
			valStr(rv.Title),
			valStr(rv.Text),
			valStr(rv.TextTranslated),
			valStr(rv.AuthorName),
			valStr(rv.AuthorID),
			valStr(rv.AuthorCountry),
			valInt64(rv.AuthorReviews),
			valTime(rv.ReviewDate),
			valTime(rv.ExperienceDate),
			rv.Verified,
			valStr(rv.Language),
			valStr(rv.ReplyMessage),
			valTime(rv.ReplyDate),
			rv.Likes,
			valStr(rv.Source),
			rv.IsEdited,
		)
	}
	res, err := r.db.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) ExistingReviewIDs(ctx context.Context, brandID int64) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, existingReviewIDsSQL, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (r *Repo) TouchBrandSync(ctx context.Context, brandID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, touchBrandSQL, at.UTC(), brandID)
	return err
}

func (r *Repo) GetBrand(ctx context.Context, dom string) (domain.Brand, error) {
	row := r.db.QueryRowContext(ctx, getBrandSQL, dom)

	var b domain.Brand
	var displayName, businessID, websiteURL, logoURL sql.NullString
	var totalReviews sql.NullInt64
	var trustScore, stars sql.NullFloat64
	var isClaimed sql.NullBool
	var catsJSON []byte
	var lastSynced sql.NullTime

	if err := row.Scan(
		&b.ID,
		&b.Domain,
		&displayName,
		&businessID,
		&websiteURL,
		&logoURL,
		&totalReviews,
		&trustScore,
		&stars,
		&isClaimed,
		&catsJSON,
		&lastSynced,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Brand{}, domain.ErrBrandNotFound
		}
		return domain.Brand{}, err
	}

	if displayName.Valid {
		s := displayName.String
		b.DisplayName = &s
	}
	if businessID.Valid {
		s := businessID.String
		b.BusinessID = &s
	}
	if websiteURL.Valid {
		s := websiteURL.String
		b.WebsiteURL = &s
	}
	if logoURL.Valid {
		s := logoURL.String
		b.LogoURL = &s
	}
	if totalReviews.Valid {
		n := totalReviews.Int64
		b.TotalReviews = &n
	}
	if trustScore.Valid {
		f := trustScore.Float64
		b.TrustScore = &f
	}
	if stars.Valid {
		f := stars.Float64
		b.Stars = &f
	}
	if isClaimed.Valid {
		v := isClaimed.Bool
		b.IsClaimed = &v
	}
	if len(catsJSON) > 0 {
		_ = json.Unmarshal(catsJSON, &b.Categories)
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		b.LastSyncedAt = &t
	}
	return b, nil
}

func (r *Repo) CountReviews(ctx context.Context, brandID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countReviewsSQL, brandID).Scan(&n)
	return n, err
}

func (r *Repo) ReviewsInWindow(ctx context.Context, brandID int64, from, to time.Time) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, reviewsInWindowSQL, brandID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			title, text, textTranslated     sql.NullString
			authorName, authorID, authorCtr sql.NullString
			authorReviews                   sql.NullInt64
			reviewDate, experienceDate      sql.NullTime
			language, replyMessage, source  sql.NullString
			replyDate                       sql.NullTime
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.BrandID,
			&rv.ExternalID,
			&rv.Rating,
			&title,
			&text,
			&textTranslated,
			&authorName,
			&authorID,
			&authorCtr,
			&authorReviews,
			&reviewDate,
			&experienceDate,
			&rv.Verified,
			&language,
			&replyMessage,
			&replyDate,
			&rv.Likes,
			&source,
			&rv.IsEdited,
		); err != nil {
			return nil, err
		}
		if title.Valid {
			s := title.String
			rv.Title = &s
		}
		if text.Valid {
			s := text.String
			rv.Text = &s
		}
		if textTranslated.Valid {
			s := textTranslated.String
			rv.TextTranslated = &s
		}
		if authorName.Valid {
			s := authorName.String
			rv.AuthorName = &s
		}
		if authorID.Valid {
			s := authorID.String
			rv.AuthorID = &s
		}
		if authorCtr.Valid {
			s := authorCtr.String
			rv.AuthorCountry = &s
		}
		if authorReviews.Valid {
			n := authorReviews.Int64
			rv.AuthorReviews = &n
		}
		if reviewDate.Valid {
			t := reviewDate.Time
			rv.ReviewDate = &t
		}
		if experienceDate.Valid {
			t := experienceDate.Time
			rv.ExperienceDate = &t
		}
		if language.Valid {
			s := language.String
			rv.Language = &s
		}
		if replyMessage.Valid {
			s := replyMessage.String
			rv.ReplyMessage = &s
		}
		if replyDate.Valid {
			t := replyDate.Time
			rv.ReplyDate = &t
		}
		if source.Valid {
			s := source.String
			rv.Source = &s
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) LatestReviewDate(ctx context.Context, brandID int64) (*time.Time, error) {
	var t sql.NullTime
	if err := r.db.QueryRowContext(ctx, latestReviewDateSQL, brandID).Scan(&t); err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	v := t.Time
	return &v, nil
}

// ReplaceMentions swaps the brand's mention list in one transaction, so
// readers never observe a mix of old and new positions.
func (r *Repo) ReplaceMentions(ctx context.Context, brandID int64, mentions []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteMentionsSQL, brandID); err != nil {
		return err
	}
	if len(mentions) > 0 {
		values := make([]string, 0, len(mentions))
		args := make([]any, 0, len(mentions)*3)
		for i, m := range mentions {
			values = append(values, "(?,?,?)")
			args = append(args, brandID, i+1, m)
		}
		if _, err := tx.ExecContext(ctx, insertMentionsPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) ListMentions(ctx context.Context, brandID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listMentionsSQL, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceTopics swaps the whole dictionary in one transaction. The import
// is the single writer, so clearing first keeps retired keys from lingering.
func (r *Repo) ReplaceTopics(ctx context.Context, ts []domain.Topic) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteTopicsSQL); err != nil {
		return err
	}
	for _, t := range ts {
		terms, err := json.Marshal(t.SearchTerms)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertTopicSQL, t.Key, t.DisplayName, string(terms)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx, listTopicsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Topic
	for rows.Next() {
		var t domain.Topic
		var terms []byte
		if err := rows.Scan(&t.ID, &t.Key, &t.DisplayName, &terms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(terms, &t.SearchTerms); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
