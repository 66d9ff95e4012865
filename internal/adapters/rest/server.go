package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	core_port "search-service/internal/core/port"
)

// Server - REST API сервиса поиска
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string, allowedOrigins []string, handlers *SearchHandler, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(allowedOrigins, handlers, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown ждет активные обработчики, SSE-потоки сами не завершатся
	srv.RegisterOnShutdown(handlers.CloseStreams)
	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(core_port.Fields{"component": "rest_server"}),
	}
}

// NewRouter собирает маршруты; отдельно от сервера, чтобы тестировать через httptest
func NewRouter(allowedOrigins []string, handlers *SearchHandler, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search/resolve", handlers.ResolveSearch)

		r.Route("/search/sessions", func(r chi.Router) {
			r.Post("/", handlers.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", handlers.GetSession)
				r.Delete("/", handlers.CloseSession)

				r.Patch("/filters", handlers.UpdateFilters)
				r.Delete("/filters", handlers.ClearFilters)
				r.Delete("/filters/{key}", handlers.RemoveFilter)

				r.Put("/page", handlers.SetPage)
				r.Put("/sort", handlers.SetSort)

				r.Put("/location", handlers.EditLocation)
				r.Post("/place", handlers.SelectPlace)
				r.Get("/suggestions", handlers.SessionSuggestions)

				r.Post("/navigation", handlers.HandleNavigation)
				r.Post("/navigation/ack", handlers.AcknowledgeNavigation)

				r.Get("/events", handlers.SubscribeToSession)
			})
		})

		r.Get("/places/suggestions", handlers.PlaceSuggestions)
		r.Get("/places/{placeID}", handlers.PlaceDetails)
	})

	return r
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
