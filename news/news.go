// Package news fetches headlines and feeds the sentiment cache.
package news

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Source returns the current batch of headlines for a query.
type Source interface {
	Headlines(ctx context.Context, query string) ([]string, error)
}

// Client fetches headlines from a NewsAPI-compatible endpoint.
type Client struct {
	client *resty.Client
	apiKey string
	// PageSize bounds how many articles a single poll requests.
	PageSize int
}

const defaultBaseURL = "https://newsapi.org/v2"

// NewClient returns a headline source backed by NewsAPI. An empty baseURL
// selects the public endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &Client{
		client:   client,
		apiKey:   apiKey,
		PageSize: 10,
	}
}

type article struct {
	Title string `json:"title"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

// Headlines returns the most recently published article titles for query.
func (c *Client) Headlines(ctx context.Context, query string) ([]string, error) {
	var out everythingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": fmt.Sprint(c.PageSize),
			"apiKey":   c.apiKey,
		}).
		SetResult(&out).
		Get("/everything")
	if err != nil {
		return nil, fmt.Errorf("news: fetch headlines for %q: %w", query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("news: headlines status %s", resp.Status())
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("news: api status %q", out.Status)
	}

	titles := make([]string, 0, len(out.Articles))
	for _, a := range out.Articles {
		if a.Title != "" {
			titles = append(titles, a.Title)
		}
	}
	return titles, nil
}
