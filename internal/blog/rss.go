package blog

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"

	"portfolio-backend/pkg/api"
)

const (
	cacheTTL     = 10 * time.Minute
	fetchTimeout = 5 * time.Second
)

// FeedClient pulls posts from an external RSS feed. Results (including
// failures, recorded as an empty list) are cached so the feed is hit at most
// once per TTL; the blog page must never block on or error out because of
// the external host.
type FeedClient struct {
	client *resty.Client
	cache  *gocache.Cache
	url    string
}

func NewFeedClient(feedURL string) *FeedClient {
	return &FeedClient{
		client: resty.New().
			SetTimeout(fetchTimeout).
			SetHeader("User-Agent", "Mozilla/5.0"),
		cache: gocache.New(cacheTTL, 2*cacheTTL),
		url:   feedURL,
	}
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Fetch returns up to limit posts from the feed, newest first as ordered by
// the feed itself. Failures are logged and yield an empty list, never an
// error.
func (c *FeedClient) Fetch(ctx context.Context, limit int) []api.ExternalPost {
	cacheKey := fmt.Sprintf("feed_%d", limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]api.ExternalPost)
	}

	posts, err := c.fetch(ctx, limit)
	if err != nil {
		slog.Error("error fetching external blog feed", "url", c.url, "error", err)
		posts = []api.ExternalPost{}
	}

	c.cache.Set(cacheKey, posts, gocache.DefaultExpiration)
	return posts
}

func (c *FeedClient) fetch(ctx context.Context, limit int) ([]api.ExternalPost, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("could not fetch feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("could not parse feed: %w", err)
	}

	items := feed.Channel.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	posts := make([]api.ExternalPost, 0, len(items))
	for _, item := range items {
		posts = append(posts, api.ExternalPost{
			Title:     strings.TrimSpace(item.Title),
			URL:       strings.TrimSpace(item.Link),
			Summary:   stripHTML(item.Description),
			Published: formatPubDate(item.PubDate),
			Source:    "rss",
		})
	}
	return posts, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func stripHTML(text string) string {
	noTags := tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(html.UnescapeString(noTags), " "))
}

func formatPubDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}
