package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"search-service/internal/adapters/httpclient"
	"search-service/internal/adapters/listing_client"
	logger_adapter "search-service/internal/adapters/logger"
	"search-service/internal/adapters/notifier"
	"search-service/internal/adapters/places_client"
	postgres_adapter "search-service/internal/adapters/postgres"
	rabbitmq_adapter "search-service/internal/adapters/rabbitmq"
	"search-service/internal/adapters/rest"
	"search-service/internal/configs"
	"search-service/internal/constants"
	"search-service/internal/contracts"
	"search-service/internal/core/debounce"
	"search-service/internal/core/port"
	"search-service/internal/core/usecase"
	fluentlogger "search-service/pkg/fluent_logger"
	"search-service/pkg/postgres"
	"search-service/pkg/rabbitmq/rabbitmq_common"
	"search-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	sessions  *usecase.SessionManager
	notifier  *notifier.SSENotifier

	dbPool      *pgxpool.Pool
	connManager *rabbitmq_common.ConnectionManager
	producer    *rabbitmq_producer.Publisher

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{config: appConfig, logger: appLogger, fluentClient: fluentClient}

	// --- 2. ВНЕШНИЕ API ---
	listingClient := listing_client.NewListingAPIClient(appConfig.ListingAPI.URL, httpclient.Config{
		Timeout:  appConfig.ListingAPI.Timeout,
		RetryMax: appConfig.ListingAPI.RetryMax,
	}, baseLogger.WithFields(port.Fields{"component": "ListingAPIClient"}))

	placesClient := places_client.NewPlacesAPIClient(appConfig.PlacesAPI.URL, httpclient.Config{
		Timeout:  appConfig.PlacesAPI.Timeout,
		RetryMax: appConfig.PlacesAPI.RetryMax,
	}, baseLogger.WithFields(port.Fields{"component": "PlacesAPIClient"}))

	// --- 3. НЕОБЯЗАТЕЛЬНАЯ ИНФРАСТРУКТУРА ---
	var placeCache port.PlaceCachePort
	if appConfig.Database.URL != "" {
		dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
			DatabaseURL:    appConfig.Database.URL,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			application.closeResources()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		application.dbPool = dbPool

		repo, err := postgres_adapter.NewPlaceCacheRepository(dbPool, appConfig.PlacesAPI.CacheTTL)
		if err != nil {
			application.closeResources()
			return nil, fmt.Errorf("failed to create place cache repository: %w", err)
		}
		if err := repo.EnsureSchema(context.Background()); err != nil {
			appLogger.Error("Failed to prepare place cache schema", err, nil)
			application.closeResources()
			return nil, err
		}
		placeCache = repo
		appLogger.Info("Place cache backed by PostgreSQL.", nil)
	} else {
		appLogger.Warn("DATABASE_URL is not set, place details cache disabled.", nil)
	}

	var searchEvents port.SearchEventsPort
	if appConfig.RabbitMQ.URL != "" {
		if err := contracts.Load(); err != nil {
			appLogger.Error("Failed to compile event schemas", err, nil)
			application.closeResources()
			return nil, fmt.Errorf("failed to compile event schemas: %w", err)
		}

		connManager, err := rabbitmq_common.NewManager(
			rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			rabbitmq_adapter.NewAMQPLogger(baseLogger, "rabbitmq_conn_manager"),
		)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			application.closeResources()
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		application.connManager = connManager

		producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName:             constants.SearchEventsExchange,
			ExchangeType:             constants.SearchEventsExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewAMQPLogger(baseLogger, "search_events_producer"),
		}, connManager)
		if err != nil {
			appLogger.Error("Failed to create search events producer", err, nil)
			application.closeResources()
			return nil, fmt.Errorf("failed to create search events producer: %w", err)
		}
		application.producer = producer

		eventsAdapter, err := rabbitmq_adapter.NewRabbitMQSearchEventsAdapter(producer, constants.SearchPerformedRoutingKey)
		if err != nil {
			application.closeResources()
			return nil, err
		}
		searchEvents = eventsAdapter
		appLogger.Info("Search analytics publisher initialized.", nil)
	} else {
		appLogger.Warn("RABBITMQ_URL is not set, search analytics disabled.", nil)
	}

	// --- 4. ЯДРО ---
	sseNotifier := notifier.NewSSENotifier(baseLogger)
	application.notifier = sseNotifier
	urlWriter, err := notifier.NewSSEURLWriter(sseNotifier)
	if err != nil {
		application.closeResources()
		return nil, err
	}

	suggestUC := usecase.NewSuggestPlacesUseCase(placesClient)
	placeDetailsUC := usecase.NewGetPlaceDetailsUseCase(placesClient, placeCache)
	resolveUC := usecase.NewResolveSearchUseCase()

	sessions := usecase.NewSessionManager(usecase.SessionDeps{
		Listings:     listingClient,
		Suggest:      suggestUC,
		PlaceDetails: placeDetailsUC,
		URLWriter:    urlWriter,
		Notifier:     sseNotifier,
		Events:       searchEvents,
		Clock:        debounce.SystemClock{},
		Logger:       baseLogger,
	}, usecase.SessionOptions{
		DebounceWindow: appConfig.Session.DebounceWindow,
		URLSettleDelay: appConfig.Session.URLSettleDelay,
	}, appConfig.Session.IdleTTL)
	application.sessions = sessions
	appLogger.Info("All use cases initialized.", nil)

	// --- 5. REST API ---
	handlers := rest.NewSearchHandler(sessions, resolveUC, suggestUC, placeDetailsUC, sseNotifier)
	application.apiServer = rest.NewServer(appConfig.Rest.PORT, appConfig.Rest.AllowedOrigins, handlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return application, nil
}

func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Stop завершает открытые SSE-потоки сам, поэтому сессии закрываются
		// после него: новых запросов к ним уже не будет
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()

		// таймеры и запросы в полете отменяются
		a.sessions.CloseAll()
		a.logger.Info("All search sessions closed.", nil)

		a.closeResources()
		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		janitorLogger := a.logger.WithFields(port.Fields{"worker": "session_janitor"})
		janitorLogger.Info("Session janitor started", port.Fields{
			"idle_ttl": a.config.Session.IdleTTL.String(),
			"interval": a.config.Session.JanitorInterval.String(),
		})
		a.sessions.RunJanitor(appCtx, a.config.Session.JanitorInterval)
		janitorLogger.Info("Session janitor stopped.", nil)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	}

	cancelApp()
	return nil
}

// closeResources закрывает инфраструктуру; безопасен при частичной инициализации
func (a *App) closeResources() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Error closing search events producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
