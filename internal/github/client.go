package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"repowatch.app/watcher/core/config"
	"repowatch.app/watcher/internal/domain"
)

// Sentinel errors for upstream statuses the poller reacts to. Anything else
// surfaces as a wrapped transient error.
var (
	ErrNotFound     = errors.New("github: repo not found")
	ErrUnauthorized = errors.New("github: unauthorized")
	ErrRateLimited  = errors.New("github: rate limited")
)

const userAgent = "repowatch/1.0"

// Client talks to the repo events feed. An optional bearer token raises the
// allowed polling frequency and is attached to every request when set.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg config.GitHubConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// EventsPage is the outcome of one conditional fetch.
type EventsPage struct {
	Events      []RawEvent
	ETag        string
	NotModified bool
	// PollInterval is the server-suggested minimum interval between
	// polls (X-Poll-Interval), zero when the header is absent.
	PollInterval time.Duration
}

// ListRepoEvents fetches the event feed for one repo. A non-empty etag is
// sent as If-None-Match; an unchanged feed comes back as NotModified with
// no body read.
func (c *Client) ListRepoEvents(ctx context.Context, repo domain.WatchKey, etag string) (EventsPage, error) {
	url := fmt.Sprintf("%s/repos/%s/events", c.baseURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return EventsPage{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return EventsPage{}, fmt.Errorf("fetching events for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	page := EventsPage{
		ETag:         resp.Header.Get("ETag"),
		PollInterval: pollInterval(resp.Header),
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&page.Events); err != nil {
			return EventsPage{}, fmt.Errorf("decoding events for %s: %w", repo, err)
		}
		return page, nil
	case http.StatusNotModified:
		// 304 carries no ETag worth keeping; the caller holds on to
		// the validator it already has.
		page.ETag = etag
		page.NotModified = true
		return page, nil
	case http.StatusNotFound:
		return EventsPage{}, ErrNotFound
	case http.StatusUnauthorized:
		return EventsPage{}, ErrUnauthorized
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			return EventsPage{}, ErrRateLimited
		}
		return EventsPage{}, ErrUnauthorized
	default:
		return EventsPage{}, fmt.Errorf("github: unexpected status %d for %s", resp.StatusCode, repo)
	}
}

func pollInterval(h http.Header) time.Duration {
	raw := h.Get("X-Poll-Interval")
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
