// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"brandtrust/internal/config"
	"brandtrust/internal/server/handlers"
	"brandtrust/internal/service/analysis"
)

// Server represents the HTTP server for serve mode
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server. natsConn may be nil; the progress
// stream endpoint then reports that events are disabled.
func NewServer(
	cfg config.ServerConfig,
	analyzer *analysis.Analyzer,
	archive handlers.ReportArchive,
	natsConn *nats.Conn,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	analysisHandler := handlers.NewAnalysisHandler(analyzer, archive)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			// Analysis runs
			r.Route("/analyses", func(r chi.Router) {
				r.Post("/", analysisHandler.StartAnalysis)
				r.Get("/", analysisHandler.ListAnalyses)
				r.Get("/{id}", analysisHandler.GetAnalysis)
			})

			// Archived reports
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", analysisHandler.ListReports)
				r.Get("/{brand}", analysisHandler.GetReport)
			})
		})
	})

	// WebSocket endpoint streaming run progress events
	router.Get("/ws/analyses/{id}", handlers.ProgressWebSocketHandler(natsConn))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
