// Package webscrape fetches a business website and pulls out the NAP
// signals a homepage typically carries: the page title, a street
// address, a phone number, and any JSON-LD LocalBusiness block.
package webscrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/nap-audit-cli/internal/schema"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; nap-audit/1.0)"

// Page is the extracted view of one website. Empty fields mean the
// signal was not found on the page, not that the fetch failed.
type Page struct {
	Name       string
	Address    string
	Phone      string
	Structured *schema.Record
}

// addressRe matches a US street address through a 5-digit ZIP, e.g.
// "123 Main St, Springfield, IL 62704".
var addressRe = regexp.MustCompile(`\d+\s+[A-Za-z0-9.'\- ]+,\s*[A-Za-z.\- ]+,\s*[A-Z]{2}[,\s]+\d{5}(?:-\d{4})?`)

// phoneRe matches NANP phone numbers in their common written forms.
var phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

var spaceRunRe = regexp.MustCompile(`\s+`)

// Client fetches and parses business websites.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scrape fetches siteURL and extracts the page's NAP signals.
func (c *Client) Scrape(ctx context.Context, siteURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "webscrape: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "webscrape: fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.New(fmt.Sprintf("webscrape: fetch page: status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "webscrape: parse html")
	}
	return extract(doc), nil
}

func extract(doc *goquery.Document) *Page {
	page := &Page{
		Name:       titleName(doc),
		Structured: structuredData(doc),
	}

	text := spaceRunRe.ReplaceAllString(doc.Find("body").Text(), " ")
	if m := addressRe.FindString(text); m != "" {
		page.Address = strings.TrimSpace(m)
	}
	page.Phone = findPhone(doc, text)
	return page
}

// titleName takes the page title up to the first separator, which drops
// the taglines sites append after the business name.
func titleName(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	for _, sep := range []string{"|", " - ", " – "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	return strings.TrimSpace(title)
}

// findPhone prefers an explicit tel: link over a body-text regex hit.
func findPhone(doc *goquery.Document, text string) string {
	phone := ""
	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		return phone == ""
	})
	if phone != "" {
		return phone
	}
	return strings.TrimSpace(phoneRe.FindString(text))
}

// structuredData returns the first parseable LocalBusiness JSON-LD block.
func structuredData(doc *goquery.Document) *schema.Record {
	var rec *schema.Record
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rec = schema.Parse([]byte(s.Text()))
		return rec == nil
	})
	return rec
}
