package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type ListingAPIConfig struct {
	URL      string
	Timeout  time.Duration
	RetryMax int
}

type PlacesAPIConfig struct {
	URL      string
	Timeout  time.Duration
	RetryMax int
	CacheTTL time.Duration
}

type SessionConfig struct {
	DebounceWindow  time.Duration
	URLSettleDelay  time.Duration
	IdleTTL         time.Duration
	JanitorInterval time.Duration
}

// DBconfig - кэш мест; пустой URL отключает Postgres
type DBconfig struct {
	URL string
}

// RabbitMQConfig - аналитика поиска; пустой URL отключает публикацию
type RabbitMQConfig struct {
	URL string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTconfig
	ListingAPI   ListingAPIConfig
	PlacesAPI    PlacesAPIConfig
	Session      SessionConfig
	Database     DBconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из .env (если он есть) и переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// в контейнере .env обычно нет, переменные приходят из окружения
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "search-service")

	cfg.Rest.PORT = getEnvAsString("PORT", "8086")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	cfg.ListingAPI.URL = strings.TrimRight(os.Getenv("LISTING_API_URL"), "/")
	if cfg.ListingAPI.URL == "" {
		return nil, fmt.Errorf("LISTING_API_URL environment variable is required")
	}
	cfg.ListingAPI.Timeout = getEnvAsDuration("LISTING_API_TIMEOUT", 10*time.Second)
	cfg.ListingAPI.RetryMax = getEnvAsInt("LISTING_API_RETRY_MAX", 0)

	cfg.PlacesAPI.URL = strings.TrimRight(getEnvAsString("PLACES_API_URL", cfg.ListingAPI.URL), "/")
	cfg.PlacesAPI.Timeout = getEnvAsDuration("PLACES_API_TIMEOUT", 5*time.Second)
	cfg.PlacesAPI.RetryMax = getEnvAsInt("PLACES_API_RETRY_MAX", 2)
	cfg.PlacesAPI.CacheTTL = getEnvAsDuration("PLACE_CACHE_TTL", 7*24*time.Hour)

	cfg.Session.DebounceWindow = getEnvAsDuration("SEARCH_DEBOUNCE_WINDOW", 300*time.Millisecond)
	cfg.Session.URLSettleDelay = getEnvAsDuration("URL_SETTLE_DELAY", 100*time.Millisecond)
	cfg.Session.IdleTTL = getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute)
	cfg.Session.JanitorInterval = getEnvAsDuration("SESSION_JANITOR_INTERVAL", time.Minute)

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "500ms", "30s", "5m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d < 0 {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList - значения через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
