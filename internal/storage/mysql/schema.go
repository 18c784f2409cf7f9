package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements are applied in order at startup. Statements are
// idempotent so repeated boots against the same database are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS brands (
  id             BIGINT       NOT NULL AUTO_INCREMENT,
  domain         VARCHAR(255) NOT NULL,
  display_name   VARCHAR(255) NULL,
  business_id    VARCHAR(64)  NULL,
  website_url    VARCHAR(512) NULL,
  logo_url       VARCHAR(512) NULL,
  total_reviews  BIGINT       NULL,
  trust_score    DOUBLE       NULL,
  stars          DOUBLE       NULL,
  is_claimed     TINYINT(1)   NULL,
  categories     JSON         NULL,
  last_synced_at DATETIME     NULL,
  created_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at     TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_brands_domain (domain)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	"CREATE TABLE IF NOT EXISTS reviews (\n" +
		"  id              BIGINT       NOT NULL AUTO_INCREMENT,\n" +
		"  brand_id        BIGINT       NOT NULL,\n" +
		"  external_id     VARCHAR(64)  NOT NULL,\n" +
		"  rating          INT          NOT NULL,\n" +
		"  title           TEXT         NULL,\n" +
		"  `text`          MEDIUMTEXT   NULL,\n" +
		"  text_translated MEDIUMTEXT   NULL,\n" +
		"  author_name     VARCHAR(255) NULL,\n" +
		"  author_id       VARCHAR(64)  NULL,\n" +
		"  author_country  VARCHAR(8)   NULL,\n" +
		"  author_reviews  BIGINT       NULL,\n" +
		"  review_date     DATETIME     NULL,\n" +
		"  experience_date DATETIME     NULL,\n" +
		"  verified        TINYINT(1)   NOT NULL DEFAULT 0,\n" +
		"  `language`      VARCHAR(16)  NULL,\n" +
		"  reply_message   MEDIUMTEXT   NULL,\n" +
		"  reply_date      DATETIME     NULL,\n" +
		"  likes           INT          NOT NULL DEFAULT 0,\n" +
		"  source          VARCHAR(32)  NULL,\n" +
		"  is_edited       TINYINT(1)   NOT NULL DEFAULT 0,\n" +
		"  created_at      TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,\n" +
		"  PRIMARY KEY (id),\n" +
		"  UNIQUE KEY uq_reviews_brand_external (brand_id, external_id),\n" +
		"  KEY ix_reviews_brand_date (brand_id, review_date),\n" +
		"  KEY ix_reviews_brand_rating (brand_id, rating),\n" +
		"  CONSTRAINT fk_reviews_brand FOREIGN KEY (brand_id) REFERENCES brands (id)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",

	`CREATE TABLE IF NOT EXISTS topics (
  id           BIGINT       NOT NULL AUTO_INCREMENT,
  topic_key    VARCHAR(128) NOT NULL,
  display_name VARCHAR(255) NOT NULL,
  search_terms JSON         NOT NULL,
  PRIMARY KEY (id),
  UNIQUE KEY uq_topics_key (topic_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS brand_mentions (
  brand_id BIGINT       NOT NULL,
  position INT          NOT NULL,
  mention  VARCHAR(255) NOT NULL,
  PRIMARY KEY (brand_id, position),
  CONSTRAINT fk_mentions_brand FOREIGN KEY (brand_id) REFERENCES brands (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
