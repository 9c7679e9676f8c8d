package domain

import "time"

// NewsArticle is one cached story inside a category bucket. URL is the upsert
// identity when present; otherwise (Title, Category) identifies the row.
type NewsArticle struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	URL       string     `json:"url"`
	Image     string     `json:"image"`
	Source    string     `json:"source"`
	PubDate   *time.Time `json:"pub_date"`
	Category  string     `json:"category"`
	Country   string     `json:"country"`
	FetchedAt time.Time  `json:"fetched_at"`
}

func (a *NewsArticle) Validate() error {
	if a.Title == "" {
		return ErrInvalidArticleTitle
	}
	if a.Category == "" {
		return ErrInvalidArticleCategory
	}
	return nil
}

// ArticleCard is the wire shape served to clients. Category and country are
// lists to match what the upstream provider returns for a raw item.
type ArticleCard struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	URL      *string  `json:"url"`
	Image    *string  `json:"image"`
	Source   *string  `json:"source"`
	PubDate  *string  `json:"pubDate"`
	Category []string `json:"category"`
	Country  []string `json:"country"`
}

func (a *NewsArticle) Card() ArticleCard {
	card := ArticleCard{
		Title:    a.Title,
		Summary:  a.Summary,
		Category: []string{},
		Country:  []string{},
	}
	if a.URL != "" {
		url := a.URL
		card.URL = &url
	}
	if a.Image != "" {
		image := a.Image
		card.Image = &image
	}
	if a.Source != "" {
		source := a.Source
		card.Source = &source
	}
	if a.PubDate != nil {
		pubDate := a.PubDate.Format(time.RFC3339)
		card.PubDate = &pubDate
	}
	if a.Category != "" {
		card.Category = []string{a.Category}
	}
	if a.Country != "" {
		card.Country = []string{a.Country}
	}
	return card
}
