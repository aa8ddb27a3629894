package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/schwifty-labs/morty-pipeline/pkg/config"
	"github.com/schwifty-labs/morty-pipeline/pkg/models"
	"github.com/schwifty-labs/morty-pipeline/pkg/retry"
)

const userAgent = "morty-pipeline/1.0"

// StatusError is a non-2xx API response. Server-side errors (5xx) and rate
// limits are retryable; client errors (4xx) are permanent.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// IsRetryable implements retry.RetryableError.
func (e *StatusError) IsRetryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// page is one page of a paginated listing. The info block carries the URL of
// the next page, or null on the last page.
type page struct {
	Info struct {
		Count int     `json:"count"`
		Pages int     `json:"pages"`
		Next  *string `json:"next"`
	} `json:"info"`
	Results []models.Document `json:"results"`
}

// Client fetches paginated entity listings from the Rick and Morty REST API.
type Client struct {
	httpClient *http.Client
	cfg        config.APIConfig
	retryCfg   *retry.Config
	pageDelay  time.Duration
	logger     *zap.Logger
}

// NewClient creates a Client from API configuration.
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cfg: cfg,
		retryCfg: &retry.Config{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: time.Duration(cfg.RetryBackoffSeconds) * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		pageDelay: time.Duration(cfg.PageDelayMillis) * time.Millisecond,
		logger:    logger.Named("api-client"),
	}
}

// FetchAllCharacters walks the paginated /character listing and returns every
// record.
func (c *Client) FetchAllCharacters(ctx context.Context) ([]models.Document, error) {
	return c.fetchAll(ctx, c.cfg.CharactersEndpoint(), "characters")
}

// FetchAllEpisodes walks the paginated /episode listing and returns every
// record.
func (c *Client) FetchAllEpisodes(ctx context.Context) ([]models.Document, error) {
	return c.fetchAll(ctx, c.cfg.EpisodesEndpoint(), "episodes")
}

func (c *Client) fetchAll(ctx context.Context, endpoint, entity string) ([]models.Document, error) {
	var all []models.Document
	next := endpoint
	pageNumber := 1

	c.logger.Info("Starting pagination",
		zap.String("entity", entity),
		zap.String("endpoint", endpoint))

	start := time.Now()
	for next != "" {
		p, err := retry.DoWithResult(ctx, c.retryCfg, func() (*page, error) {
			return c.fetchPage(ctx, next)
		})
		if err != nil {
			return nil, fmt.Errorf("pagination failed on page %d of %s: %w", pageNumber, entity, err)
		}

		all = append(all, p.Results...)
		c.logger.Info("Fetched page",
			zap.String("entity", entity),
			zap.Int("page", pageNumber),
			zap.Int("records", len(p.Results)),
			zap.Int("total_so_far", len(all)))

		if p.Info.Next == nil || *p.Info.Next == "" {
			break
		}
		next = *p.Info.Next
		pageNumber++

		// Small delay between pages to be respectful to the API
		if c.pageDelay > 0 {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	c.logger.Info("Completed pagination",
		zap.String("entity", entity),
		zap.Int("total_records", len(all)),
		zap.Duration("elapsed", time.Since(start)))

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{Code: resp.StatusCode, URL: url}
		if statusErr.IsRetryable() {
			c.logger.Warn("Server error, will retry", zap.Int("status", resp.StatusCode), zap.String("url", url))
		}
		return nil, statusErr
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode page from %s: %w", url, err)
	}
	return &p, nil
}
