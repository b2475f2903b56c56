package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/webscrape"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	queries := []string{"Acme Plumbing", "Zebra Consulting"}
	run, err := s.CreateRun(ctx, queries)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusAuditing))

	results := []model.AuditResult{
		{Query: "Acme Plumbing", Status: model.StatusAllGood},
		{Query: "Zebra Consulting", Status: model.StatusNoMatch},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, results))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, queries, got.Queries)
	require.Len(t, got.Results, 2)
	assert.Equal(t, model.StatusAllGood, got.Results[0].Status)
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRun(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateRunStatusNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRunsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, []string{"Acme Plumbing"})
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, []string{"Zebra Consulting"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	byQuery, err := s.ListRuns(ctx, RunFilter{Query: "Zebra Consulting"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, []string{"Zebra Consulting"}, byQuery[0].Queries)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestScrapeCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page := &webscrape.Page{
		Name:    "Acme Plumbing",
		Address: "123 Main St, Springfield, IL 62704",
		Phone:   "(217) 555-1234",
	}
	require.NoError(t, s.SetCachedPage(ctx, "https://acme.example.com", page, time.Hour))

	got, err := s.GetCachedPage(ctx, "https://acme.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, page.Name, got.Name)
	assert.Equal(t, page.Phone, got.Phone)

	miss, err := s.GetCachedPage(ctx, "https://other.example.com")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestScrapeCacheExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	page := &webscrape.Page{Name: "Acme Plumbing"}
	require.NoError(t, s.SetCachedPage(ctx, "https://acme.example.com", page, -time.Minute))

	got, err := s.GetCachedPage(ctx, "https://acme.example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
