// Package util holds HTTP plumbing shared by the page fetcher: proxy
// selection and robots.txt politeness.
package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/ppiankov/greenlens/internal/cache"
)

const (
	robotsCacheNamespace = "robots"
	maxRobotsBytes       = 512 << 10
)

// robotsEntry is what gets cached per host; parsing is cheap, fetching is not
type robotsEntry struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// RobotsChecker checks robots.txt compliance
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string
	agent      string
	cache      cache.Cache
	ttl        time.Duration
}

// NewRobotsChecker creates a robots.txt checker. Fetched files are kept in c
// for ttl; a nil cache refetches every time.
func NewRobotsChecker(client *http.Client, userAgent string, c cache.Cache, ttl time.Duration) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if c == nil {
		c = cache.NopCache{}
	}
	return &RobotsChecker{
		httpClient: client,
		userAgent:  userAgent,
		agent:      NormalizeUserAgent(userAgent),
		cache:      c,
		ttl:        ttl,
	}
}

// CanFetch checks if the URL can be fetched according to robots.txt.
// Returns (allowed, crawlDelay, error). An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return false, 0, fmt.Errorf("parse URL: no host in %q", rawURL)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	entry, err := r.robots(ctx, robotsURL)
	if err != nil {
		return true, 0, nil
	}

	data, err := robotstxt.FromStatusAndBytes(entry.Status, entry.Body)
	if err != nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	var crawlDelay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		crawlDelay = group.CrawlDelay
	}

	return data.TestAgent(path, r.agent), crawlDelay, nil
}

// IsAllowed is a convenience method that returns only the allowed status
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) bool {
	allowed, _, _ := r.CanFetch(ctx, rawURL)
	return allowed
}

func (r *RobotsChecker) robots(ctx context.Context, robotsURL string) (robotsEntry, error) {
	key := cache.Key(robotsCacheNamespace, robotsURL)

	var entry robotsEntry
	if data, found := r.cache.Get(key); found {
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return entry, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return entry, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return entry, fmt.Errorf("read robots.txt: %w", err)
	}

	entry = robotsEntry{Status: resp.StatusCode, Body: body}
	if data, err := json.Marshal(entry); err == nil {
		_ = r.cache.Set(key, data, r.ttl)
	}
	return entry, nil
}

// NormalizeUserAgent reduces a User-Agent header to the product token that
// robots.txt groups are matched against ("Greenlens/0.1 (+url)" -> "Greenlens")
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
