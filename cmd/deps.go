package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nap-audit-cli/internal/audit"
	"github.com/sells-group/nap-audit-cli/internal/match"
	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/store"
	"github.com/sells-group/nap-audit-cli/internal/webscrape"
	"github.com/sells-group/nap-audit-cli/pkg/places"
	"github.com/sells-group/nap-audit-cli/pkg/yext"
)

// initStore opens and migrates the SQLite store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// placesSearcher adapts the Places client to the auditor's Searcher.
type placesSearcher struct {
	client places.Client
}

func (p *placesSearcher) Search(ctx context.Context, query string) ([]model.Candidate, error) {
	return p.client.SearchText(ctx, query)
}

// yextListings adapts the Yext finder to the auditor's ListingsClient.
type yextListings struct {
	finder *yext.Finder
}

func (y *yextListings) Lookup(ctx context.Context, name string) (*audit.Listing, error) {
	loc, err := y.finder.Find(ctx, name)
	if err != nil || loc == nil {
		return nil, err
	}
	return &audit.Listing{
		Record: model.NapRecord{
			Source:  model.SourceDirectory,
			Name:    loc.Name,
			Address: loc.Address,
			Phone:   loc.Phone,
		},
		Website: loc.Website,
	}, nil
}

// buildAuditor wires the full pipeline from configuration. The Yext leg
// is optional and skipped when no key is configured.
func buildAuditor(st store.Store) *audit.Auditor {
	placesOpts := []places.Option{places.WithRateLimit(cfg.Places.RateLimit)}
	if cfg.Places.BaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.Places.BaseURL))
	}
	searcher := &placesSearcher{client: places.NewClient(cfg.Places.Key, placesOpts...)}

	scrapeOpts := []webscrape.Option{
		webscrape.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Scrape.TimeoutSecs) * time.Second}),
	}
	if cfg.Scrape.UserAgent != "" {
		scrapeOpts = append(scrapeOpts, webscrape.WithUserAgent(cfg.Scrape.UserAgent))
	}
	var scraper audit.Scraper = webscrape.NewClient(scrapeOpts...)
	if st != nil && cfg.Scrape.CacheTTLHours > 0 {
		scraper = audit.NewCachedScraper(scraper, st, time.Duration(cfg.Scrape.CacheTTLHours)*time.Hour)
	}

	scorer := match.NewScorer(cfg.Match)

	var listings audit.ListingsClient
	if cfg.Yext.Key != "" {
		yextOpts := []yext.Option{yext.WithRateLimit(cfg.Yext.RateLimit)}
		if cfg.Yext.BaseURL != "" {
			yextOpts = append(yextOpts, yext.WithBaseURL(cfg.Yext.BaseURL))
		}
		client := yext.NewClient(cfg.Yext.Key, yextOpts...)
		listings = &yextListings{finder: yext.NewFinder(client, scorer, cfg.Yext.Threshold)}
	} else {
		zap.L().Info("yext key not configured, skipping listings checks")
	}

	return audit.NewAuditor(searcher, scraper, listings, match.NewSelector(scorer))
}
