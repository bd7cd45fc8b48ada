package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recruit-cli/internal/ingest"
	"github.com/sells-group/recruit-cli/internal/runlog"
	"github.com/sells-group/recruit-cli/internal/source"
	"github.com/sells-group/recruit-cli/pkg/airtable"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server for ingestion requests",
	Long:  "Exposes POST /webhook/ingest so upstream automations can trigger ingestion when a new export lands.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := initAirtable()
		if err != nil {
			return err
		}
		rl, err := initRunlog(ctx)
		if err != nil {
			return err
		}
		defer rl.Close() //nolint:errcheck

		pipeline := ingest.NewPipeline(client, cfg)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/webhook/ingest", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				File   string `json:"file"`
				Source string `json:"source"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if body.File == "" {
				http.Error(w, `{"error":"file is required"}`, http.StatusBadRequest)
				return
			}
			adapter, err := source.For(body.Source)
			if err != nil {
				http.Error(w, `{"error":"unknown source"}`, http.StatusBadRequest)
				return
			}

			run, err := rl.CreateRun(req.Context(), body.File, adapter.Source())
			if err != nil {
				zap.L().Error("webhook run not created", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			// Ingestion outlives the request; tie it to the server context.
			go runIngestion(ctx, pipeline, client, rl, run.ID, body.File, body.Source)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "accepted",
				"run_id": run.ID,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// runIngestion performs the full process-and-upload flow for one webhook
// request, recording the outcome in the runlog.
func runIngestion(ctx context.Context, pipeline *ingest.Pipeline, client airtable.Client, rl runlog.Store, runID, file, src string) {
	records, parsed, err := pipeline.Process(ctx, file, src)
	if err != nil {
		zap.L().Error("webhook ingestion failed",
			zap.String("file", file),
			zap.Error(err),
		)
		if failErr := rl.FailRun(ctx, runID, err); failErr != nil {
			zap.L().Error("run not marked failed", zap.Error(failErr))
		}
		return
	}

	uploader := &ingest.Uploader{
		Client:     client,
		Table:      cfg.Airtable.MasterTable,
		BatchSize:  cfg.Ingest.BatchSize,
		BatchPause: time.Duration(cfg.Ingest.BatchPauseMS) * time.Millisecond,
		RunID:      runID,
		Sink:       rl,
	}
	summary, err := uploader.Upload(ctx, records)
	if err != nil {
		if failErr := rl.FailRun(ctx, runID, err); failErr != nil {
			zap.L().Error("run not marked failed", zap.Error(failErr))
		}
		return
	}
	summary.ParsedRows = parsed

	if err := rl.CompleteRun(ctx, runID, summary); err != nil {
		zap.L().Error("run not marked complete", zap.Error(err))
	}
	zap.L().Info("webhook ingestion complete",
		zap.String("file", file),
		zap.String("run_id", runID),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Errors),
	)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
