// Package newsapi retrieves live articles from a NewsAPI-compatible HTTP
// search endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// DefaultBaseURL is the public "everything" endpoint.
const DefaultBaseURL = "https://newsapi.org/v2/everything"

// maxPageSize is the largest page the API serves.
const maxPageSize = 100

// Config holds endpoint and retry parameters.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
}

// Client implements live retrieval over HTTP.
type Client struct {
	http   *http.Client
	config Config
	logger logging.Logger
}

// NewClient builds a client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "news api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid news api base url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{http: httpClient, config: cfg, logger: logger}, nil
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

func (a apiArticle) article() risk.Article {
	date := a.PublishedAt
	if len(date) >= 10 {
		date = date[:10]
	}
	return risk.Article{
		Headline: strings.TrimSpace(a.Title),
		Snippet:  strings.TrimSpace(a.Description),
		Source:   a.Source.Name,
		Date:     date,
		URL:      a.URL,
	}
}

// Retrieve fetches at most limit articles for query. 429, 5xx and transport
// errors are retried with Fibonacci backoff; other statuses fail at once.
// Every failure carries the RetrievalFailure code.
func (c *Client) Retrieve(ctx context.Context, query string, limit int) ([]risk.Article, error) {
	if limit <= 0 {
		return []risk.Article{}, nil
	}
	pageSize := limit
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	reqURL, err := c.buildURL(query, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalFailure, "invalid request url")
	}

	var body apiResponse
	attempt := 0
	backoff := retry.WithMaxRetries(c.config.MaxRetries, retry.NewFibonacci(c.config.InitialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		return c.fetch(ctx, reqURL, &body)
	})
	if err != nil {
		c.logger.Warn("News API retrieval failed",
			logging.String("query", query),
			logging.Int("attempts", attempt),
			logging.Err(err))
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrCodeRetrievalFailure {
			return nil, appErr
		}
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalFailure, "news api request failed")
	}

	articles := make([]risk.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		art := a.article()
		if art.Headline == "" && art.Snippet == "" {
			continue
		}
		articles = append(articles, art)
		if len(articles) == limit {
			break
		}
	}
	return articles, nil
}

func (c *Client) buildURL(query string, pageSize int) (string, error) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("apiKey", c.config.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) fetch(ctx context.Context, reqURL string, out *apiResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return retry.RetryableError(fmt.Errorf("news api returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeRetrievalFailure, "failed to decode news api response")
	}
	if resp.StatusCode != http.StatusOK || out.Status == "error" {
		return errors.Newf(errors.ErrCodeRetrievalFailure, "news api returned %d", resp.StatusCode).
			WithDetail(strings.TrimSpace(out.Code + " " + out.Message))
	}
	return nil
}

//Personal.AI order the ending
