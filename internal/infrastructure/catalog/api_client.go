package catalog

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

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shopassist/backend/internal/domain"
)

const (
	defaultAPITimeout  = 30 * time.Second
	defaultAPIPageSize = 100
	maxAPIPageSize     = 100
	maxAttempts        = 3
	// maxPages bounds the crawl in case the backend reports a bogus page count
	maxPages = 500
)

// APIConfig configures the product REST backend client
type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	PageSize          int
	RequestsPerSecond float64
	Burst             int
}

// APIClient loads the catalog from the product REST backend by paging
// through its product listing
type APIClient struct {
	httpClient  *http.Client
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewAPIClient creates a new product backend client
func NewAPIClient(cfg APIConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultAPIPageSize
	}
	if pageSize > maxAPIPageSize {
		pageSize = maxAPIPageSize
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &APIClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		sleep:       sleepContext,
	}
}

// SetDebug enables or disables per-request logging
func (c *APIClient) SetDebug(debug bool) {
	c.debug = debug
}

// ListProducts fetches every page of the product listing
func (c *APIClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	start := time.Now()
	var products []domain.Product
	skipped := 0

	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		mapped, dropped := MapToProducts(resp.Products)
		products = append(products, mapped...)
		skipped += dropped

		if page >= resp.TotalPages || len(resp.Products) == 0 {
			break
		}
	}

	if skipped > 0 {
		log.Warn().Str("component", "catalog_api").Int("skipped", skipped).Msg("skipped unmappable products")
	}
	log.Info().
		Str("component", "catalog_api").
		Int("products", len(products)).
		Dur("duration", time.Since(start)).
		Msg("loaded catalog from product backend")

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// fetchPage requests one listing page. Transport failures and non-2xx
// statuses other than 404 are retried with exponential backoff.
func (c *APIClient) fetchPage(ctx context.Context, page int) (*domain.APIProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(c.pageSize))
	reqURL := fmt.Sprintf("%s/products/?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrCatalogUnavailable, err)
		}

		if c.debug {
			log.Debug().Str("component", "catalog_api").Str("url", reqURL).Int("attempt", attempt).Msg("requesting product page")
		}

		body, status, err := c.doRequest(ctx, reqURL)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusNotFound:
			return nil, fmt.Errorf("%w: product listing not found at %s", domain.ErrCatalogUnavailable, c.baseURL)
		case status < 200 || status >= 300:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, status)
			log.Warn().
				Str("component", "catalog_api").
				Int("status", status).
				Int("attempt", attempt).
				Str("body", truncate(body, 512)).
				Msg("product backend error")
		default:
			var resp domain.APIProductPage
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("%w: failed to decode page %d: %v", domain.ErrCatalogUnavailable, page, err)
			}
			return &resp, nil
		}

		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts {
			if err := c.sleep(ctx, exponentialBackoff(attempt)); err != nil {
				break
			}
		}
	}

	log.Error().Err(lastErr).Str("component", "catalog_api").Int("page", page).Msg("all retries failed")
	return nil, lastErr
}

// doRequest executes a GET and returns the body and status
func (c *APIClient) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShopAssist/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read body: %v", domain.ErrCatalogUnavailable, err)
	}
	return body, resp.StatusCode, nil
}

var _ domain.CatalogRepository = (*APIClient)(nil)

// exponentialBackoff returns the wait before retrying after the given attempt:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(body []byte, limit int) string {
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
