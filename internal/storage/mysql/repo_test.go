package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"trustwatch/internal/domain"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func ptr[T any](v T) *T { return &v }

func TestUpsertBrandReturnsExistingID(t *testing.T) {
	it(func() {
		mock.ExpectExec("INSERT INTO brands").
			WithArgs("acme.io", "Acme", nil, nil, nil, int64(1042), 4.3, 4.5, true, `["electronics","shops"]`).
			WillReturnResult(sqlmock.NewResult(42, 2)) // duplicate path reports 2 affected

		repo := New(db)
		id, err := repo.UpsertBrand(context.Background(), domain.Brand{
			Domain:       "acme.io",
			DisplayName:  ptr("Acme"),
			TotalReviews: ptr(int64(1042)),
			TrustScore:   ptr(4.3),
			Stars:        ptr(4.5),
			IsClaimed:    ptr(true),
			Categories:   []string{"electronics", "shops"},
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if id != 42 {
			t.Fatalf("want id 42 got %d", id)
		}
	})
}

func TestInsertReviewsEmptyBatch(t *testing.T) {
	it(func() {
		repo := New(db)
		n, err := repo.InsertReviews(context.Background(), 1, nil)
		if err != nil || n != 0 {
			t.Fatalf("empty batch: n=%d err=%v", n, err)
		}
	})
}

func TestInsertReviewsCountsOnlyNewRows(t *testing.T) {
	it(func() {
		// 3 rows sent, 2 actually inserted: one was already stored
		mock.ExpectExec("INSERT IGNORE INTO reviews").
			WillReturnResult(sqlmock.NewResult(0, 2))

		when := time.Date(2026, time.January, 19, 8, 0, 0, 0, time.UTC)
		rs := []domain.Review{
			{ExternalID: "r1", Rating: 5, ReviewDate: &when},
			{ExternalID: "r2", Rating: 1, ReviewDate: &when},
			{ExternalID: "r3", Rating: 3, ReviewDate: &when},
		}
		repo := New(db)
		n, err := repo.InsertReviews(context.Background(), 7, rs)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if n != 2 {
			t.Fatalf("want 2 new rows got %d", n)
		}
	})
}

func TestGetBrandNotFound(t *testing.T) {
	it(func() {
		mock.ExpectQuery("FROM brands").
			WithArgs("missing.io").
			WillReturnError(sql.ErrNoRows)

		repo := New(db)
		_, err := repo.GetBrand(context.Background(), "missing.io")
		if !errors.Is(err, domain.ErrBrandNotFound) {
			t.Fatalf("want ErrBrandNotFound got %v", err)
		}
	})
}

func TestExistingReviewIDs(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT external_id FROM reviews").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"external_id"}).FromCSVString("r1\nr2"))

		repo := New(db)
		ids, err := repo.ExistingReviewIDs(context.Background(), 7)
		if err != nil {
			t.Fatalf("existing ids: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("want 2 ids got %d", len(ids))
		}
		if _, ok := ids["r1"]; !ok {
			t.Fatal("missing r1")
		}
		if _, ok := ids["r2"]; !ok {
			t.Fatal("missing r2")
		}
	})
}

func TestReviewsInWindowScansNullableColumns(t *testing.T) {
	it(func() {
		cols := []string{
			"id", "brand_id", "external_id", "rating", "title", "text", "text_translated",
			"author_name", "author_id", "author_country", "author_reviews",
			"review_date", "experience_date", "verified", "language",
			"reply_message", "reply_date", "likes", "source", "is_edited",
		}
		when := time.Date(2026, time.January, 20, 9, 30, 0, 0, time.UTC)
		rows := sqlmock.NewRows(cols).
			AddRow(int64(1), int64(7), "r1", 5, nil, "great service", nil,
				"Pat", nil, "US", nil,
				when, nil, true, "en",
				nil, nil, 3, "trustpilot", false)
		mock.ExpectQuery("FROM reviews").WillReturnRows(rows)

		repo := New(db)
		from := time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)
		got, err := repo.ReviewsInWindow(context.Background(), 7, from, from.AddDate(0, 0, 7))
		if err != nil {
			t.Fatalf("window: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("want 1 review got %d", len(got))
		}
		rv := got[0]
		if rv.Title != nil || rv.Text == nil || *rv.Text != "great service" {
			t.Fatalf("nullable text columns mishandled: %+v", rv)
		}
		if rv.ReviewDate == nil || !rv.ReviewDate.Equal(when) {
			t.Fatalf("review_date: %v", rv.ReviewDate)
		}
		if rv.ExperienceDate != nil || rv.ReplyDate != nil {
			t.Fatalf("null dates mishandled: %+v", rv)
		}
		if !rv.Verified || rv.IsEdited {
			t.Fatalf("flags mishandled: %+v", rv)
		}
	})
}

func TestReplaceMentionsIsTransactional(t *testing.T) {
	it(func() {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM brand_mentions").
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO brand_mentions").
			WithArgs(int64(7), 1, "delivery", int64(7), 2, "support").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		repo := New(db)
		if err := repo.ReplaceMentions(context.Background(), 7, []string{"delivery", "support"}); err != nil {
			t.Fatalf("replace mentions: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})
}

func TestReplaceTopicsClearsThenInserts(t *testing.T) {
	it(func() {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM topics").
			WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectExec("INSERT INTO topics").
			WithArgs("customer_service", "Customer Service", `["customer service","customer services"]`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		repo := New(db)
		err := repo.ReplaceTopics(context.Background(), []domain.Topic{{
			Key:         "customer_service",
			DisplayName: "Customer Service",
			SearchTerms: []string{"customer service", "customer services"},
		}})
		if err != nil {
			t.Fatalf("replace topics: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})
}

func TestLatestReviewDateNull(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT MAX").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		repo := New(db)
		got, err := repo.LatestReviewDate(context.Background(), 7)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if got != nil {
			t.Fatalf("want nil for brand with no reviews, got %v", got)
		}
	})
}
