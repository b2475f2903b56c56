package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nap-audit-cli/internal/audit"
	"github.com/sells-group/nap-audit-cli/internal/mailer"
	"github.com/sells-group/nap-audit-cli/internal/model"
	"github.com/sells-group/nap-audit-cli/internal/store"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for audit requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		auditor := buildAuditor(st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, st, auditor),
		}

		go shutdownOnDone(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// recipients accepts either a single address or a list of addresses in
// JSON, since callers send both shapes.
type recipients []string

func (r *recipients) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*r = nil
		if one != "" {
			*r = recipients{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return eris.Wrap(err, "email must be a string or an array of strings")
	}
	*r = recipients(many)
	return nil
}

type auditRequest struct {
	Businesses []string   `json:"businesses"`
	Email      recipients `json:"email"`
}

// newRouter wires the HTTP API. Runs accepted here are processed on the
// server's context, so they outlive the request that queued them.
func newRouter(ctx context.Context, st store.Store, auditor *audit.Auditor) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/audit", func(w http.ResponseWriter, req *http.Request) {
		var body auditRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(body.Businesses) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "businesses is required"})
			return
		}

		run, err := st.CreateRun(req.Context(), body.Businesses)
		if err != nil {
			zap.L().Error("create run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create run"})
			return
		}

		go processRun(ctx, st, auditor, run, body.Email)

		writeJSON(w, http.StatusAccepted, map[string]string{
			"run_id": run.ID,
			"status": string(run.Status),
		})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		runs, err := st.ListRuns(req.Context(), store.RunFilter{
			Status: model.RunStatus(req.URL.Query().Get("status")),
		})
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list runs"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/runs/{runID}", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "runID"))
		if err != nil {
			zap.L().Error("get run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load run"})
			return
		}
		if run == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	return r
}

// shutdownOnDone drains the server once ctx is canceled. Shutdown gets a
// fresh context so in-flight requests finish instead of being cut off by
// the already-canceled signal context.
func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// processRun executes a queued run and stores the outcome.
func processRun(ctx context.Context, st store.Store, auditor *audit.Auditor, run *model.Run, email []string) {
	log := zap.L().With(zap.String("run_id", run.ID))

	if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusAuditing); err != nil {
		log.Error("update run status failed", zap.Error(err))
		return
	}

	results, err := auditor.Run(ctx, run.Queries, cfg.Batch.MaxConcurrent)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
		return
	}
	if err := st.CompleteRun(ctx, run.ID, results); err != nil {
		log.Error("complete run failed", zap.Error(err))
		return
	}
	log.Info("run complete", zap.Int("businesses", len(results)))

	if len(email) == 0 {
		return
	}
	reportPath := filepath.Join(os.TempDir(), fmt.Sprintf("nap-audit-%s.xlsx", run.ID))
	if err := audit.ExportFile(reportPath, results); err != nil {
		log.Error("export report failed", zap.Error(err))
		return
	}
	defer os.Remove(reportPath) //nolint:errcheck
	m := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err := m.SendReport(email, reportPath, results); err != nil {
		log.Error("email report failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
