package audit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/nap-audit-cli/internal/match"
	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/schema"
	"github.com/sells-group/nap-audit-cli/internal/webscrape"
)

// Searcher finds directory candidates for a business query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Candidate, error)
}

// Scraper fetches a business website and extracts its visible NAP data
// plus any embedded structured-data block.
type Scraper interface {
	Scrape(ctx context.Context, siteURL string) (*webscrape.Page, error)
}

// Listing is one listings-platform entity: its NAP record plus the
// website URL the platform has on file, which doubles as the
// known-correct site for candidate selection.
type Listing struct {
	Record  model.NapRecord
	Website string
}

// ListingsClient looks a business up on a listings management platform.
type ListingsClient interface {
	Lookup(ctx context.Context, name string) (*Listing, error)
}

// Auditor runs the full pipeline for one business: listings lookup,
// directory search, candidate selection, website scrape, and field
// reconciliation. Listings is optional; the rest are required.
type Auditor struct {
	searcher Searcher
	scraper  Scraper
	listings ListingsClient
	selector *match.Selector
}

func NewAuditor(searcher Searcher, scraper Scraper, listings ListingsClient, selector *match.Selector) *Auditor {
	return &Auditor{
		searcher: searcher,
		scraper:  scraper,
		listings: listings,
		selector: selector,
	}
}

// Audit processes one business query. It always returns a usable
// AuditResult: upstream failures surface as the result's status, never
// as an error.
func (a *Auditor) Audit(ctx context.Context, query string) model.AuditResult {
	log := zap.L().With(zap.String("query", query))

	listing := a.lookupListing(ctx, log, query)
	knownSite := ""
	if listing != nil {
		knownSite = listing.Website
	}

	candidates, err := a.searcher.Search(ctx, query)
	if err != nil {
		log.Warn("directory search failed", zap.Error(err))
		res := model.SearchErrorResult(err.Error())
		return a.finish(query, res, model.NapRecord{}, nil, nil, "")
	}

	res := a.selector.Select(query, candidates, knownSite)
	if !res.Matched() {
		log.Info("no confident directory match",
			zap.String("outcome", string(res.Outcome)),
			zap.Int("candidates", len(candidates)))
		return a.finish(query, res, model.NapRecord{}, nil, nil, "")
	}

	ref := recordFromCandidate(res.Candidate)
	siteURL := res.Candidate.Website
	if siteURL == "" {
		siteURL = knownSite
	}

	others := make([]model.NapRecord, 0, 3)
	result := model.AuditResult{}

	page := a.scrapeSite(ctx, log, siteURL)
	website := websiteRecord(page)
	others = append(others, website)
	result.Website = &website

	if listing != nil {
		others = append(others, listing.Record)
		rec := listing.Record
		result.Directory = &rec
	}

	var schemaIssues []model.Discrepancy
	if page != nil && page.Structured != nil {
		structured := structuredRecord(page.Structured)
		others = append(others, structured)
		result.Structured = &structured
		schemaIssues = schema.CheckConformance(page.Structured)
	}

	return a.finishWith(result, query, res, ref, others, schemaIssues, siteURL)
}

// Run audits every query with bounded concurrency, preserving input
// order in the results. Individual failures land in their result rows,
// so the only error Run returns is context cancellation.
func (a *Auditor) Run(ctx context.Context, queries []string, concurrency int) ([]model.AuditResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]model.AuditResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Audit(ctx, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Auditor) lookupListing(ctx context.Context, log *zap.Logger, query string) *Listing {
	if a.listings == nil {
		return nil
	}
	listing, err := a.listings.Lookup(ctx, query)
	if err != nil {
		// Listings data is supplementary; the audit proceeds without it.
		log.Warn("listings lookup failed", zap.Error(err))
		return nil
	}
	return listing
}

func (a *Auditor) scrapeSite(ctx context.Context, log *zap.Logger, siteURL string) *webscrape.Page {
	if siteURL == "" {
		return nil
	}
	page, err := a.scraper.Scrape(ctx, siteURL)
	if err != nil {
		log.Warn("website scrape failed", zap.String("url", siteURL), zap.Error(err))
		return nil
	}
	return page
}

func (a *Auditor) finish(query string, res model.MatchResult, ref model.NapRecord, others []model.NapRecord, schemaIssues []model.Discrepancy, siteURL string) model.AuditResult {
	return a.finishWith(model.AuditResult{}, query, res, ref, others, schemaIssues, siteURL)
}

func (a *Auditor) finishWith(result model.AuditResult, query string, res model.MatchResult, ref model.NapRecord, others []model.NapRecord, schemaIssues []model.Discrepancy, siteURL string) model.AuditResult {
	out := Reconcile(res, ref, others, schemaIssues)

	result.Query = query
	result.Match = res
	result.WebsiteURL = siteURL
	result.Discrepancies = out.Discrepancies
	result.Status = out.Status
	result.Summary = out.Summary
	result.Actions = out.Actions
	result.Notes = out.Notes
	if res.Matched() {
		result.Reference = &ref
	}
	return result
}

// recordFromCandidate turns the matched directory candidate into the
// reference record, substituting the missing sentinel for absent fields.
func recordFromCandidate(c model.Candidate) model.NapRecord {
	return model.NapRecord{
		Source:  model.SourceReference,
		Name:    orMissing(c.Name),
		Address: orMissing(c.Address),
		Phone:   orMissing(c.Phone),
	}
}

// websiteRecord flattens a scraped page (possibly nil) into the website
// source record.
func websiteRecord(page *webscrape.Page) model.NapRecord {
	rec := model.NapRecord{
		Source:  model.SourceWebsite,
		Name:    model.MissingValue,
		Address: model.MissingValue,
		Phone:   model.MissingValue,
	}
	if page == nil {
		return rec
	}
	rec.Name = orMissing(page.Name)
	rec.Address = orMissing(page.Address)
	rec.Phone = orMissing(page.Phone)
	return rec
}

func structuredRecord(rec *schema.Record) model.NapRecord {
	return model.NapRecord{
		Source:  model.SourceStructuredData,
		Name:    orMissing(rec.Name),
		Address: orMissing(rec.Address),
		Phone:   orMissing(rec.Telephone),
	}
}

func orMissing(s string) string {
	if s == "" {
		return model.MissingValue
	}
	return s
}
