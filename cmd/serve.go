package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mydub-ai/reporter-cli/internal/config"
	"github.com/mydub-ai/reporter-cli/internal/model"
	"github.com/mydub-ai/reporter-cli/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for fetch, generate, and feedback requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initReporter(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Background threshold checks, only useful with a webhook configured.
		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(env.Collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Monitoring),
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

// newRouter builds the HTTP API over an initialized environment.
func newRouter(env *reporterEnv, moncfg config.MonitoringConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		snap, err := env.Collector.Collect(req.Context(), moncfg.LookbackHours)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Route("/agents/{specialty}", func(r chi.Router) {
		r.Post("/fetch", func(w http.ResponseWriter, req *http.Request) {
			a, err := resolveAgent(env, chi.URLParam(req, "specialty"))
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			res, err := a.FetchContent(req.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/generate", func(w http.ResponseWriter, req *http.Request) {
			a, err := resolveAgent(env, chi.URLParam(req, "specialty"))
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}

			var item model.ContentItem
			if err := json.NewDecoder(req.Body).Decode(&item); err != nil {
				writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			if item.Title == "" || item.Content == "" {
				writeError(w, http.StatusBadRequest, eris.New("title and content are required"))
				return
			}

			analysis, err := a.AnalyzeContent(req.Context(), &item)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			if !a.ShouldPublish(analysis) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":    "below publication thresholds",
					"analysis": analysis,
				})
				return
			}

			article, err := a.GenerateArticle(req.Context(), &item)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"article":  article,
				"analysis": analysis,
			})
		})

		r.Post("/feedback", func(w http.ResponseWriter, req *http.Request) {
			a, err := resolveAgent(env, chi.URLParam(req, "specialty"))
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}

			var fb model.Feedback
			if err := json.NewDecoder(req.Body).Decode(&fb); err != nil {
				writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
				return
			}
			fb.AgentID = a.ID()
			if err := a.LearnFromFeedback(req.Context(), &fb); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
