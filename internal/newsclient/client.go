package newsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultBaseURL = "https://newsdata.io/api/1/news"

	// The provider occasionally hangs; requests are bounded instead.
	requestTimeout = 12 * time.Second

	// maxSummaryLength is in runes, not bytes.
	maxSummaryLength = 1000
)

var ErrMissingAPIKey = errors.New("news API key is not configured")

// Item is a provider story normalized to the fields we persist.
type Item struct {
	Title   string
	Summary string
	URL     string
	Image   string
	Source  string
	PubDate *time.Time
}

// Fetcher retrieves stories for a set of categories from the news provider.
type Fetcher interface {
	Fetch(ctx context.Context, categories []string, country, language string) ([]Item, error)
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type apiResponse struct {
	Status  string    `json:"status"`
	Results []apiItem `json:"results"`
}

type apiItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url"`
	SourceID    string `json:"source_id"`
	PubDate     string `json:"pubDate"`
}

func (c *Client) Fetch(ctx context.Context, categories []string, country, language string) ([]Item, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("language", language)
	if len(categories) > 0 {
		params.Set("category", strings.Join(categories, ","))
	}
	if country != "" {
		params.Set("country", country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	if payload.Status != "success" {
		return nil, fmt.Errorf("news provider returned status %q", payload.Status)
	}

	items := make([]Item, 0, len(payload.Results))
	for _, raw := range payload.Results {
		items = append(items, normalizeItem(raw))
	}

	return items, nil
}

func normalizeItem(raw apiItem) Item {
	summary := raw.Description
	if summary == "" {
		summary = raw.Content
	}

	summary = stripHTMLTags(summary)
	if runes := []rune(summary); len(runes) > maxSummaryLength {
		summary = string(runes[:maxSummaryLength]) + "..."
	}

	return Item{
		Title:   strings.TrimSpace(raw.Title),
		Summary: summary,
		URL:     strings.TrimSpace(raw.Link),
		Image:   strings.TrimSpace(raw.ImageURL),
		Source:  strings.TrimSpace(raw.SourceID),
		PubDate: parsePubDate(raw.PubDate),
	}
}

var pubDateFormats = []string{
	"2006-01-02 15:04:05", // NewsData's usual shape
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePubDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	for _, format := range pubDateFormats {
		if parsed, err := time.Parse(format, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}

	return nil
}

func stripHTMLTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	text := doc.Text()
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}
