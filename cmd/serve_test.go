package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nap-audit-cli/internal/audit"
	"github.com/sells-group/nap-audit-cli/internal/config"
	"github.com/sells-group/nap-audit-cli/internal/match"
	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/store"
	"github.com/sells-group/nap-audit-cli/internal/webscrape"
)

type noResultsSearcher struct{}

func (noResultsSearcher) Search(_ context.Context, _ string) ([]model.Candidate, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, ctx context.Context) (http.Handler, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	scorer := match.NewScorer(match.DefaultOptions())
	auditor := audit.NewAuditor(noResultsSearcher{}, webscrape.NewClient(), nil, match.NewSelector(scorer))
	return newRouter(ctx, st, auditor), st
}

func TestRecipientsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"single address", `"owner@acme.example.com"`, []string{"owner@acme.example.com"}},
		{"address list", `["a@acme.example.com","b@acme.example.com"]`, []string{"a@acme.example.com", "b@acme.example.com"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var r recipients
			require.NoError(t, json.Unmarshal([]byte(tc.data), &r))
			assert.Equal(t, tc.want, []string(r))
		})
	}

	var r recipients
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestAuditEndpointAcceptsSingleEmailAddress(t *testing.T) {
	cfg = &config.Config{}
	cfg.Batch.MaxConcurrent = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler, st := newTestRouter(t, ctx)

	body := `{"businesses": ["Acme Plumbing"], "email": "owner@acme.example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["run_id"])
	assert.Equal(t, string(model.RunStatusQueued), resp["status"])

	// The run is processed in the background; wait for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		run, err := st.GetRun(context.Background(), resp["run_id"])
		require.NoError(t, err)
		if run != nil && run.Status == model.RunStatusComplete {
			require.Len(t, run.Results, 1)
			assert.Equal(t, model.StatusNoMatch, run.Results[0].Status)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not complete")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAuditEndpointAcceptsEmailList(t *testing.T) {
	cfg = &config.Config{}
	cfg.Batch.MaxConcurrent = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler, _ := newTestRouter(t, ctx)

	body := `{"businesses": ["Acme Plumbing"], "email": ["a@acme.example.com", "b@acme.example.com"]}`
	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAuditEndpointRejectsEmptyBusinesses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler, _ := newTestRouter(t, ctx)

	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader(`{"email": "owner@acme.example.com"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunEndpointNotFound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler, _ := newTestRouter(t, ctx)

	req := httptest.NewRequest(http.MethodGet, "/runs/nonexistent", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdownDrainsInFlightRequests(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		shutdownOnDone(ctx, srv)
		close(shutdownDone)
	}()
	go srv.Serve(ln) //nolint:errcheck

	codeCh := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			codeCh <- 0
			return
		}
		defer resp.Body.Close()
		codeCh <- resp.StatusCode
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}

	// Shutdown begins while the request is still in flight; the request
	// must be allowed to finish.
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case code := <-codeCh:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was dropped during shutdown")
	}

	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not return")
	}
}
