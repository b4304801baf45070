package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terrapulse/vitals-cli/internal/diagnosis"
	"github.com/terrapulse/vitals-cli/internal/history"
	"github.com/terrapulse/vitals-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP diagnosis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(env.Orchestrator, env.History),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter assembles the API routes. hist may be nil, in which case the
// history endpoint reports the feature as unavailable.
func buildRouter(o *diagnosis.Orchestrator, hist *history.Store) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/diagnosis/{organ}", func(w http.ResponseWriter, req *http.Request) {
		result, err := o.Diagnose(req.Context(), chi.URLParam(req, "organ"), req.URL.Query().Get("site"))
		if err != nil {
			if errors.Is(err, model.ErrUnknownOrgan) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown organ"})
				return
			}
			zap.L().Error("diagnosis request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/v1/scan", func(w http.ResponseWriter, req *http.Request) {
		results, err := o.ScanAll(req.Context(), req.URL.Query().Get("site"))
		if err != nil {
			zap.L().Error("scan request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		ordered := make([]model.DiagnosisResult, 0, len(results))
		for _, organ := range model.AllOrgans() {
			if res, ok := results[organ]; ok {
				ordered = append(ordered, res)
			}
		}
		writeJSON(w, http.StatusOK, ordered)
	})

	r.Get("/v1/quota", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, o.Status())
	})

	r.Get("/v1/history", func(w http.ResponseWriter, req *http.Request) {
		if hist == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history persistence disabled"})
			return
		}

		filter := history.Filter{Locator: req.URL.Query().Get("site")}
		if organName := req.URL.Query().Get("organ"); organName != "" {
			organ, err := model.ParseOrgan(organName)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown organ"})
				return
			}
			filter.Organ = organ
		}
		if limitStr := req.URL.Query().Get("limit"); limitStr != "" {
			if limit, err := strconv.Atoi(limitStr); err == nil {
				filter.Limit = limit
			}
		}

		entries, err := hist.Recent(req.Context(), filter)
		if err != nil {
			zap.L().Error("history request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
