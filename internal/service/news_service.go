package service

import (
	"context"
	"log"
	"strings"
	"time"

	"bitmore/internal/domain"
	"bitmore/internal/newsclient"
	"bitmore/internal/repository"
	"bitmore/pkg/fetchlock"
)

// HomeBuckets are the fixed sections of the home feed, each backed by the
// provider category of the same name.
var HomeBuckets = []string{
	"technology", "politics", "education", "business",
	"sports", "health", "entertainment", "world",
}

const (
	homeStoreCap     = 24
	categoryStoreCap = 20

	homeSectionLimit  = 12
	categoryListLimit = 20
)

type NewsService struct {
	articleRepo  repository.ArticleRepository
	fetcher      newsclient.Fetcher
	guard        *fetchlock.Guard
	fetchEnabled bool
}

func NewNewsService(
	articleRepo repository.ArticleRepository,
	fetcher newsclient.Fetcher,
	guard *fetchlock.Guard,
	fetchEnabled bool,
) *NewsService {
	return &NewsService{
		articleRepo:  articleRepo,
		fetcher:      fetcher,
		guard:        guard,
		fetchEnabled: fetchEnabled,
	}
}

// Home returns the cached article lists for every home bucket, refreshing
// each bucket from the provider at most once per calendar day.
func (s *NewsService) Home(ctx context.Context, country, language string) (map[string][]domain.ArticleCard, error) {
	payload := make(map[string][]domain.ArticleCard, len(HomeBuckets))

	for _, bucket := range HomeBuckets {
		s.refreshBucket(ctx, bucket, country, language, homeStoreCap)

		cards, err := s.readBucket(bucket, homeSectionLimit)
		if err != nil {
			return nil, err
		}
		payload[bucket] = cards
	}

	return payload, nil
}

// Category returns the cached list for one bucket, refreshing it first under
// the same once-per-day policy.
func (s *NewsService) Category(ctx context.Context, category, country, language string) (string, []domain.ArticleCard, error) {
	bucket := strings.ToLower(strings.TrimSpace(category))

	s.refreshBucket(ctx, bucket, country, language, categoryStoreCap)

	cards, err := s.readBucket(bucket, categoryListLimit)
	if err != nil {
		return bucket, nil, err
	}

	return bucket, cards, nil
}

// refreshBucket calls the provider once for a bucket that nobody has fetched
// today, then upserts up to maxSave items. Provider failures are logged and
// the claim released so a later request may retry; the caller always serves
// whatever the cache holds.
func (s *NewsService) refreshBucket(ctx context.Context, bucket, country, language string, maxSave int) {
	if !s.fetchEnabled {
		return
	}

	fetched, err := s.articleRepo.FetchedToday(bucket)
	if err != nil {
		log.Printf("Error checking fetch freshness for bucket %s: %v", bucket, err)
		return
	}
	if fetched {
		return
	}

	if !s.guard.Claim(bucket, time.Now()) {
		return
	}

	items, err := s.fetcher.Fetch(ctx, []string{bucket}, country, language)
	if err != nil {
		s.guard.Release(bucket)
		log.Printf("Error fetching news for bucket %s: %v", bucket, err)
		return
	}

	stored := 0
	for _, item := range items {
		if stored >= maxSave {
			break
		}

		title := item.Title
		if title == "" {
			title = "Untitled"
		}

		article := &domain.NewsArticle{
			Title:    title,
			Summary:  item.Summary,
			URL:      item.URL,
			Image:    item.Image,
			Source:   item.Source,
			PubDate:  item.PubDate,
			Category: bucket,
			Country:  country,
		}

		if err := s.articleRepo.Upsert(article); err != nil {
			log.Printf("Error storing article %q in bucket %s: %v", title, bucket, err)
			continue
		}
		stored++
	}

	if stored > 0 {
		log.Printf("Stored %d articles for bucket %s", stored, bucket)
	}
}

func (s *NewsService) readBucket(bucket string, limit int) ([]domain.ArticleCard, error) {
	articles, err := s.articleRepo.GetByCategory(bucket, limit)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.ArticleCard, 0, len(articles))
	for i := range articles {
		cards = append(cards, articles[i].Card())
	}

	return cards, nil
}
