package mysql

// LAST_INSERT_ID(id) makes the duplicate path report the existing row's id,
// so one round trip covers both insert and refresh.
const upsertBrandSQL = `
INSERT INTO brands
  (domain, display_name, business_id, website_url, logo_url, total_reviews, trust_score, stars, is_claimed, categories)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id            = LAST_INSERT_ID(id),
  display_name  = COALESCE(VALUES(display_name), brands.display_name),
  business_id   = COALESCE(VALUES(business_id), brands.business_id),
  website_url   = COALESCE(VALUES(website_url), brands.website_url),
  logo_url      = COALESCE(VALUES(logo_url), brands.logo_url),
  total_reviews = COALESCE(VALUES(total_reviews), brands.total_reviews),
  trust_score   = COALESCE(VALUES(trust_score), brands.trust_score),
  stars         = COALESCE(VALUES(stars), brands.stars),
  is_claimed    = COALESCE(VALUES(is_claimed), brands.is_claimed),
  categories    = COALESCE(VALUES(categories), brands.categories),
  updated_at    = CURRENT_TIMESTAMP
`

// Note: `text` and `language` are keywords; keep them quoted everywhere.
// INSERT IGNORE keys on uq_reviews_brand_external, so replaying overlapping
// pages affects zero rows instead of duplicating.
const insertReviewsPrefix = "INSERT IGNORE INTO reviews\n" +
	"  (brand_id, external_id, rating, title, `text`, text_translated," +
	" author_name, author_id, author_country, author_reviews," +
	" review_date, experience_date, verified, `language`," +
	" reply_message, reply_date, likes, source, is_edited)\nVALUES "

const reviewRowPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

const existingReviewIDsSQL = `SELECT external_id FROM reviews WHERE brand_id = ?`

const touchBrandSQL = `UPDATE brands SET last_synced_at = ? WHERE id = ?`

const deleteMentionsSQL = `DELETE FROM brand_mentions WHERE brand_id = ?`

const insertMentionsPrefix = "INSERT INTO brand_mentions (brand_id, position, mention)\nVALUES "

const deleteTopicsSQL = `DELETE FROM topics`

const upsertTopicSQL = `
INSERT INTO topics (topic_key, display_name, search_terms)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  display_name = VALUES(display_name),
  search_terms = VALUES(search_terms)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getBrandSQL = `
SELECT
  id,
  domain,
  display_name,
  business_id,
  website_url,
  logo_url,
  total_reviews,
  trust_score,
  stars,
  is_claimed,
  categories,
  last_synced_at
FROM brands
WHERE domain = ?
`

const countReviewsSQL = `SELECT COUNT(*) FROM reviews WHERE brand_id = ?`

// Window bounds follow the week convention: inclusive start, exclusive end.
const reviewsInWindowSQL = "SELECT\n" +
	"  id, brand_id, external_id, rating, title, `text`, text_translated,\n" +
	"  author_name, author_id, author_country, author_reviews,\n" +
	"  review_date, experience_date, verified, `language`,\n" +
	"  reply_message, reply_date, likes, source, is_edited\n" +
	"FROM reviews\n" +
	"WHERE brand_id = ? AND review_date >= ? AND review_date < ?\n" +
	"ORDER BY review_date, id"

const latestReviewDateSQL = `SELECT MAX(review_date) FROM reviews WHERE brand_id = ?`

const listMentionsSQL = `SELECT mention FROM brand_mentions WHERE brand_id = ? ORDER BY position`

const listTopicsSQL = `SELECT id, topic_key, display_name, search_terms FROM topics ORDER BY topic_key`
