// Package yext provides a client for the Yext Knowledge API, used as the
// listings management platform of record.
package yext

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	apiVersion = "20240404"
	pageLimit  = 50
)

// Client defines the Yext Knowledge API operations.
type Client interface {
	// ListAccounts returns every account visible to the API key.
	ListAccounts(ctx context.Context) ([]Account, error)
	// ListLocations returns every location entity in an account, walking
	// the page tokens until exhausted.
	ListLocations(ctx context.Context, accountID string) ([]Location, error)
}

// Account is one Yext sub-account.
type Account struct {
	ID   string `json:"accountId"`
	Name string `json:"accountName"`
}

// Location is one location entity, flattened to the audit's fields.
type Location struct {
	ID      string
	Name    string
	Address string
	Phone   string
	Website string
}

// envelope is the standard Yext response wrapper.
type envelope struct {
	Response json.RawMessage `json:"response"`
}

type accountsPage struct {
	Accounts  []Account `json:"accounts"`
	PageToken string    `json:"pageToken"`
}

type entitiesPage struct {
	Entities  []entity `json:"entities"`
	PageToken string   `json:"pageToken"`
}

type entity struct {
	Meta struct {
		ID string `json:"id"`
	} `json:"meta"`
	Name    string `json:"name"`
	Address struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		Region     string `json:"region"`
		PostalCode string `json:"postalCode"`
	} `json:"address"`
	MainPhone  string `json:"mainPhone"`
	WebsiteURL struct {
		URL string `json:"url"`
	} `json:"websiteUrl"`
}

// Option configures the Yext client.
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

// NewClient creates a new Yext Knowledge API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.yext.com/v2",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	pageToken := ""
	for {
		raw, err := c.get(ctx, "/accounts", pageToken)
		if err != nil {
			return nil, eris.Wrap(err, "yext: list accounts")
		}
		var page accountsPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, eris.Wrap(err, "yext: parse accounts page")
		}
		accounts = append(accounts, page.Accounts...)
		if page.PageToken == "" {
			return accounts, nil
		}
		pageToken = page.PageToken
	}
}

func (c *httpClient) ListLocations(ctx context.Context, accountID string) ([]Location, error) {
	var locations []Location
	pageToken := ""
	for {
		raw, err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/entities", pageToken, "entityTypes", "location")
		if err != nil {
			return nil, eris.Wrap(err, "yext: list locations")
		}
		var page entitiesPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, eris.Wrap(err, "yext: parse entities page")
		}
		for _, e := range page.Entities {
			locations = append(locations, Location{
				ID:      e.Meta.ID,
				Name:    e.Name,
				Address: flattenAddress(e.Address.Line1, e.Address.Line2, e.Address.City, e.Address.Region, e.Address.PostalCode),
				Phone:   e.MainPhone,
				Website: e.WebsiteURL.URL,
			})
		}
		if page.PageToken == "" {
			return locations, nil
		}
		pageToken = page.PageToken
	}
}

// get performs one GET against path and unwraps the response envelope.
// extra holds alternating key/value query parameters.
func (c *httpClient) get(ctx context.Context, path, pageToken string, extra ...string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, eris.New("api key not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit")
	}

	params := url.Values{
		"api_key": {c.apiKey},
		"v":       {apiVersion},
		"limit":   {strconv.Itoa(pageLimit)},
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		params.Set(extra[i], extra[i+1])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "parse envelope")
	}
	return env.Response, nil
}

func flattenAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
