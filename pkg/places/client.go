// Package places provides a client for the Google Places Text Search API.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

const fieldMask = "places.displayName,places.formattedAddress,places.internationalPhoneNumber,places.websiteUri"

// Client defines the Places search operations.
type Client interface {
	// SearchText runs a free-text place search and returns the candidates
	// in API ranking order.
	SearchText(ctx context.Context, query string) ([]model.Candidate, error)
}

// searchRequest is the Text Search request body.
type searchRequest struct {
	TextQuery string `json:"textQuery"`
}

// searchResponse is the Text Search response envelope.
type searchResponse struct {
	Places []place `json:"places"`
}

type place struct {
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress         string `json:"formattedAddress"`
	InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	WebsiteURI               string `json:"websiteUri"`
}

// Option configures the Places client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Places Text Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://places.googleapis.com/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchText(ctx context.Context, query string) ([]model.Candidate, error) {
	if c.apiKey == "" {
		return nil, eris.New("places: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	payload, err := json.Marshal(searchRequest{TextQuery: query})
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: search returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, eris.Wrap(err, "places: parse response")
	}

	candidates := make([]model.Candidate, 0, len(searchResp.Places))
	for _, p := range searchResp.Places {
		candidates = append(candidates, model.Candidate{
			Name:    p.DisplayName.Text,
			Address: p.FormattedAddress,
			Phone:   p.InternationalPhoneNumber,
			Website: p.WebsiteURI,
		})
	}
	return candidates, nil
}
