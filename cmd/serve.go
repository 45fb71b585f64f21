package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/metrics"
	"github.com/sells-group/contact-finder/internal/model"
	"github.com/sells-group/contact-finder/internal/monitoring"
	"github.com/sells-group/contact-finder/internal/resolve"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for contact resolution",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(ctx, strategy)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}

		s := &server{
			runner:       batch.NewRunner(env.Resolver, batchConfig()),
			alerter:      monitoring.NewAlerter(cfg.Monitoring),
			breakers:     env.Breakers,
			strategy:     env.Profile.Name,
			maxCompanies: cfg.Server.MaxCompanies,
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(s),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.String("strategy", s.strategy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// breakerStates reports circuit breaker states by service.
type breakerStates interface {
	States() map[string]string
}

type server struct {
	runner       *batch.Runner
	alerter      *monitoring.Alerter
	breakers     breakerStates
	strategy     string
	maxCompanies int
}

type resolveRequest struct {
	Companies []companyInput `json:"companies"`
}

type companyInput struct {
	Company string        `json:"company"`
	City    string        `json:"city,omitempty"`
	State   string        `json:"state,omitempty"`
	Country string        `json:"country,omitempty"`
	Extra   []model.Field `json:"extra,omitempty"`
}

type strategyInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Stages      []model.Stage `json:"stages"`
	Active      bool          `json:"active"`
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)
		r.Post("/resolve", s.handleResolve)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok", "strategy": s.strategy}
	if s.breakers != nil {
		resp["breakers"] = s.breakers.States()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	var out []strategyInfo
	for _, name := range resolve.ProfileNames() {
		p, err := resolve.LoadProfile(name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, strategyInfo{
			Name:        p.Name,
			Description: p.Description,
			Stages:      p.Stages,
			Active:      p.Name == s.strategy,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Companies) == 0 {
		writeError(w, http.StatusBadRequest, "companies is required")
		return
	}
	if len(req.Companies) > s.maxCompanies {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d companies per request", s.maxCompanies))
		return
	}

	records := make([]model.CompanyRecord, 0, len(req.Companies))
	for _, c := range req.Companies {
		records = append(records, model.CompanyRecord{
			RawName: c.Company,
			Location: model.Location{
				City:    strings.TrimSpace(c.City),
				State:   strings.TrimSpace(c.State),
				Country: strings.TrimSpace(c.Country),
			},
			Extra: c.Extra,
		})
	}

	report := s.runner.Run(r.Context(), records)
	if s.alerter != nil {
		s.alerter.Check(r.Context(), report)
	}

	writeJSON(w, http.StatusOK, report)
}

// metricsMiddleware records request counts and latencies by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.status, time.Since(start))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write json failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
