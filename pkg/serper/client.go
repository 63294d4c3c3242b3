// Package serper provides a client for the Serper web and shopping search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://google.serper.dev"

// Client performs web and shopping searches.
type Client interface {
	// Search performs an organic web search.
	Search(ctx context.Context, query string, opts ...SearchOption) ([]WebResult, error)
	// Shopping performs a shopping search returning price listings.
	Shopping(ctx context.Context, query string, opts ...SearchOption) ([]ShoppingResult, error)
}

// WebResult is a single organic search result. Source is the bare domain
// of the result URL.
type WebResult struct {
	Title    string `json:"title"`
	URL      string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Position int    `json:"position"`
}

// ShoppingResult is a single shopping search result. Prices arrive as
// display strings; ExtractedPrice is set only when the API pre-parsed one.
type ShoppingResult struct {
	Title          string  `json:"title"`
	Source         string  `json:"source"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extractedPrice"`
	URL            string  `json:"link"`
	Rating         float64 `json:"rating"`
	RatingCount    int     `json:"ratingCount"`
	Delivery       string  `json:"delivery"`
	ImageURL       string  `json:"imageUrl"`
}

// SearchOption configures a single search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	location   string
	numResults int
}

// WithLocation sets the search location for this request.
func WithLocation(location string) SearchOption {
	return func(o *searchOpts) {
		o.location = location
	}
}

// WithNumResults sets the number of results to request.
func WithNumResults(n int) SearchOption {
	return func(o *searchOpts) {
		o.numResults = n
	}
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithDefaultLocation sets the location used when a request has none.
func WithDefaultLocation(location string) Option {
	return func(c *httpClient) {
		c.location = location
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	location string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Serper API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		location: "India",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchPayload struct {
	Q        string `json:"q"`
	Location string `json:"location,omitempty"`
	Num      int    `json:"num,omitempty"`
}

type organicResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Date     string `json:"date"`
		Position int    `json:"position"`
	} `json:"organic"`
}

type shoppingResponse struct {
	Shopping []ShoppingResult `json:"shopping"`
	// Older API deployments used this key.
	ShoppingResults []ShoppingResult `json:"shopping_results"`
}

func (c *httpClient) Search(ctx context.Context, query string, opts ...SearchOption) ([]WebResult, error) {
	body, err := c.post(ctx, "/search", query, 10, opts)
	if err != nil {
		return nil, err
	}

	var parsed organicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal search response")
	}

	results := make([]WebResult, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		results = append(results, WebResult{
			Title:    r.Title,
			URL:      r.Link,
			Snippet:  r.Snippet,
			Date:     r.Date,
			Source:   domainOf(r.Link),
			Position: r.Position,
		})
	}
	return results, nil
}

func (c *httpClient) Shopping(ctx context.Context, query string, opts ...SearchOption) ([]ShoppingResult, error) {
	body, err := c.post(ctx, "/shopping", query, 20, opts)
	if err != nil {
		return nil, err
	}

	var parsed shoppingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal shopping response")
	}

	if len(parsed.Shopping) > 0 {
		return parsed.Shopping, nil
	}
	return parsed.ShoppingResults, nil
}

func (c *httpClient) post(ctx context.Context, path, query string, defaultNum int, opts []SearchOption) ([]byte, error) {
	so := &searchOpts{location: c.location, numResults: defaultNum}
	for _, opt := range opts {
		opt(so)
	}

	payload, err := json.Marshal(searchPayload{
		Q:        query,
		Location: so.location,
		Num:      so.numResults,
	})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "serper: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "serper: create request")
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, statusCode, err := c.retryDo(ctx, req, payload)
	if err != nil {
		return nil, eris.Wrap(err, "serper: request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("serper: unexpected status %d: %s", statusCode, string(body))
	}
	return body, nil
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff on transient
// failures (429, 500, 502, 503).
func (c *httpClient) retryDo(ctx context.Context, req *http.Request, payload []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)
		retryReq.Body = io.NopCloser(bytes.NewReader(payload))

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "serper: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("serper: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

// domainOf extracts the bare domain from a URL, stripping any www prefix.
func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
