package repository

import (
	"database/sql"
	"fmt"

	"bitmore/internal/domain"
)

type ArticleRepository interface {
	Upsert(article *domain.NewsArticle) error
	GetByCategory(bucket string, limit int) ([]domain.NewsArticle, error)
	FetchedToday(bucket string) (bool, error)
}

type articleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Upsert stores an article under its bucket. Re-fetching the same story
// updates the existing row: the URL is the identity when present, otherwise
// (title, category). Every upsert touches fetched_at, which is what the
// daily refresh check looks at.
func (r *articleRepository) Upsert(article *domain.NewsArticle) error {
	if err := article.Validate(); err != nil {
		return err
	}

	var err error
	if article.URL != "" {
		_, err = r.db.Exec(`
			INSERT INTO news_articles (title, summary, url, image, source, pub_date, category, country, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_DATE)
			ON CONFLICT (url) WHERE url IS NOT NULL DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			image = EXCLUDED.image,
			source = EXCLUDED.source,
			pub_date = EXCLUDED.pub_date,
			category = EXCLUDED.category,
			country = EXCLUDED.country,
			fetched_at = CURRENT_DATE`,
			article.Title, nullString(article.Summary), article.URL,
			nullString(article.Image), nullString(article.Source),
			article.PubDate, article.Category, nullString(article.Country))
	} else {
		_, err = r.db.Exec(`
			INSERT INTO news_articles (title, summary, url, image, source, pub_date, category, country, fetched_at)
			VALUES ($1, $2, NULL, $3, $4, $5, $6, $7, CURRENT_DATE)
			ON CONFLICT (title, category) WHERE url IS NULL DO UPDATE SET
			summary = EXCLUDED.summary,
			image = EXCLUDED.image,
			source = EXCLUDED.source,
			pub_date = EXCLUDED.pub_date,
			country = EXCLUDED.country,
			fetched_at = CURRENT_DATE`,
			article.Title, nullString(article.Summary),
			nullString(article.Image), nullString(article.Source),
			article.PubDate, article.Category, nullString(article.Country))
	}

	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

func (r *articleRepository) GetByCategory(bucket string, limit int) ([]domain.NewsArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, title, summary, url, image, source, pub_date, category, country, fetched_at
		FROM news_articles
		WHERE category = $1
		ORDER BY pub_date DESC NULLS LAST, id DESC
		LIMIT $2`,
		bucket, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.NewsArticle
	for rows.Next() {
		var article domain.NewsArticle
		var summary, url, image, source, country sql.NullString
		var pubDate sql.NullTime

		err := rows.Scan(
			&article.ID, &article.Title, &summary, &url, &image, &source,
			&pubDate, &article.Category, &country, &article.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}

		article.Summary = summary.String
		article.URL = url.String
		article.Image = image.String
		article.Source = source.String
		article.Country = country.String
		if pubDate.Valid {
			article.PubDate = &pubDate.Time
		}

		articles = append(articles, article)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}

func (r *articleRepository) FetchedToday(bucket string) (bool, error) {
	var fetched bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM news_articles WHERE category = $1 AND fetched_at = CURRENT_DATE)",
		bucket,
	).Scan(&fetched)

	if err != nil {
		return false, fmt.Errorf("failed to check fetch freshness: %w", err)
	}

	return fetched, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
