package rest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/sidelined/internal/metrics"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    int
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server. archive may be nil.
func NewServer(port int, runner SeasonRunner, archive SeasonArchive, m *metrics.Manager, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[rest] ", log.LstdFlags)
	}
	handler := NewHandler(runner, archive)

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(handler, m, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the route table around handler.
func NewRouter(handler *Handler, m *metrics.Manager, logger *log.Logger) *mux.Router {
	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(MetricsMiddleware(m))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods("GET")
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/seasons/{season}/wins-lost", handler.GetWinsLost).Methods("GET")
	api.HandleFunc("/seasons/{season}/stints", handler.GetStints).Methods("GET")

	return router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
