package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/wikiprov/wikiprov/internal/cache"
	"github.com/wikiprov/wikiprov/internal/model"
	"github.com/wikiprov/wikiprov/internal/util"
	"github.com/wikiprov/wikiprov/internal/worker"
)

// Source provides reference text for a topic.
type Source interface {
	// Fetch returns the plain-text article for the topic.
	// Fails with model.ErrTopicNotFound when no article exists.
	Fetch(ctx context.Context, topic string) (string, error)
}

const searchLimit = 3

// Client fetches topic articles from the MediaWiki action API. The topic
// is resolved through search: the first of the top search results with a
// fetchable page wins, which absorbs disambiguation and near-miss titles.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different wiki (or a test server)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache enables article caching (nil disables)
func WithCache(store cache.Cache) Option {
	return func(c *Client) { c.cache = store }
}

// WithRobots enables robots.txt compliance checks
func WithRobots(r *util.RobotsChecker) Option {
	return func(c *Client) { c.robots = r }
}

// NewClient creates a Wikipedia content source
func NewClient(cfg model.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://en.wikipedia.org",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   worker.NewLimiter(cfg.RatePerSecond, cfg.RateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch resolves the topic to an article and returns its plain text
func (c *Client) Fetch(ctx context.Context, topic string) (string, error) {
	if c.cache != nil {
		if data, found := c.cache.Get(cache.Key("article", topic)); found {
			return string(data), nil
		}
	}

	titles, err := c.search(ctx, topic)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", topic, err)
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("%w: no wikipedia page for %q", model.ErrTopicNotFound, topic)
	}

	var text string
	var lastErr error
	for _, title := range titles {
		text, lastErr = c.fetchPage(ctx, title)
		if lastErr == nil && text != "" {
			break
		}
	}
	if text == "" {
		if lastErr != nil {
			return "", fmt.Errorf("fetch %q: %w", topic, lastErr)
		}
		return "", fmt.Errorf("%w: empty article for %q", model.ErrTopicNotFound, topic)
	}

	if c.cache != nil {
		_ = c.cache.Set(cache.Key("article", topic), []byte(text), 0)
	}

	return text, nil
}

// search returns the top page titles matching the topic
func (c *Client) search(ctx context.Context, topic string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", topic)
	params.Set("srlimit", fmt.Sprintf("%d", searchLimit))
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// fetchPage fetches one page's rendered HTML and strips it to plain text
func (c *Client) fetchPage(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("redirects", "1")
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return "", err
	}

	var resp struct {
		Parse struct {
			Title string `json:"title"`
			Text  struct {
				Content string `json:"*"`
			} `json:"text"`
		} `json:"parse"`
		Error struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode parse response: %w", err)
	}

	if resp.Error.Code != "" {
		if resp.Error.Code == "missingtitle" || resp.Error.Code == "invalidtitle" {
			return "", fmt.Errorf("%w: %s", model.ErrTopicNotFound, resp.Error.Info)
		}
		return "", fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info)
	}

	return ExtractArticleText(resp.Parse.Text.Content)
}

// get performs a rate-limited, robots-respecting API GET
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	apiURL := c.baseURL + "/w/api.php?" + params.Encode()

	if c.robots != nil {
		allowed, crawlDelay, err := c.robots.CanFetch(ctx, apiURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows fetching %s", apiURL)
		}
		if err := c.limiter.WaitWithDelay(ctx, apiURL, crawlDelay); err != nil {
			return nil, err
		}
	} else if err := c.limiter.Wait(ctx, apiURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	maxBytes := c.maxBytes
	if maxBytes <= 0 {
		maxBytes = 4_000_000
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
