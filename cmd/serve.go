package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-legal/docaudit/internal/ingest"
	"github.com/meridian-legal/docaudit/internal/model"
	"github.com/meridian-legal/docaudit/internal/pipeline"
	"github.com/meridian-legal/docaudit/internal/store"
	"github.com/meridian-legal/docaudit/pkg/extraction"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audit HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		claude := extraction.NewClaude(cfg.Anthropic)
		p, err := pipeline.New(cfg, claude, nil)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
			return eris.Wrap(err, "create upload dir")
		}

		srv := &auditServer{store: st, pipeline: p, baseCtx: ctx}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{cfg.Server.AllowedOrigin},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/healthz", srv.health)
		r.Route("/api/audits", func(r chi.Router) {
			r.Post("/", srv.createAudit)
			r.Get("/", srv.listAudits)
			r.Get("/{id}", srv.getAudit)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type auditServer struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	baseCtx  context.Context
}

func (s *auditServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createAudit accepts a multipart PDF upload and starts the audit
// asynchronously. The response carries the run ID for polling.
func (s *auditServer) createAudit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(cfg.Server.MaxUploadMB << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	caseType := r.FormValue("case_type")
	runID := uuid.NewString()

	dst := filepath.Join(cfg.Server.UploadDir, runID+".pdf")
	out, err := os.Create(dst)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store upload"})
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store upload"})
		return
	}
	out.Close()

	if _, err := s.store.CreateRun(r.Context(), runID, header.Filename, caseType); err != nil {
		zap.L().Error("create run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "create run"})
		return
	}

	// The audit outlives the upload request; it stops with the server, not
	// with the client connection.
	go s.runAudit(s.baseCtx, runID, dst, caseType)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": string(model.RunStatusQueued),
	})
}

func (s *auditServer) runAudit(ctx context.Context, runID, path, caseType string) {
	log := zap.L().With(zap.String("run_id", runID))

	fail := func(err error) {
		log.Error("audit failed", zap.Error(err))
		if serr := s.store.UpdateRunStatus(ctx, runID, model.RunStatusFailed); serr != nil {
			log.Warn("mark run failed", zap.Error(serr))
		}
	}

	if err := s.store.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
		log.Warn("mark run running", zap.Error(err))
	}

	pages, err := ingest.NewPDFSource(path, cfg.Ingest).Pages(ctx)
	if err != nil {
		fail(err)
		return
	}

	rep, err := s.pipeline.Run(ctx, pages, caseType)
	if err != nil {
		fail(err)
		return
	}
	rep.RunID = runID

	if err := s.store.CompleteRun(ctx, runID, rep); err != nil {
		fail(err)
		return
	}
	log.Info("audit complete", zap.Float64("quality_score", rep.QualityScore))
}

func (s *auditServer) getAudit(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		zap.L().Error("get run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get run"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *auditServer) listAudits(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Status:   model.RunStatus(r.URL.Query().Get("status")),
		CaseType: r.URL.Query().Get("case_type"),
	}
	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs"})
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
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
