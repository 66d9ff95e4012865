package configs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LISTING_API_URL", "http://listings:8080/")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("missing .env should not be fatal: %v", err)
	}

	if cfg.ListingAPI.URL != "http://listings:8080" {
		t.Errorf("listing url: got %q", cfg.ListingAPI.URL)
	}
	if cfg.PlacesAPI.URL != cfg.ListingAPI.URL {
		t.Errorf("places url should default to listing url, got %q", cfg.PlacesAPI.URL)
	}
	if cfg.Session.DebounceWindow != 300*time.Millisecond || cfg.Session.URLSettleDelay != 100*time.Millisecond {
		t.Errorf("session timings: %+v", cfg.Session)
	}
	if cfg.ListingAPI.RetryMax != 0 {
		t.Errorf("listing retries should be off by default, got %d", cfg.ListingAPI.RetryMax)
	}
	if cfg.Database.URL != "" || cfg.RabbitMQ.URL != "" || cfg.FluentBit.Enabled {
		t.Error("optional infrastructure should be disabled by default")
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	for _, key := range []string{"LISTING_API_URL", "SEARCH_DEBOUNCE_WINDOW", "CORS_ALLOWED_ORIGINS", "FLUENTBIT_ENABLED", "FLUENTBIT_HOST"} {
		// godotenv не перезаписывает уже заданные переменные
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "LISTING_API_URL=http://api:9000\n" +
		"SEARCH_DEBOUNCE_WINDOW=250ms\n" +
		"CORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n" +
		"FLUENTBIT_ENABLED=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.DebounceWindow != 250*time.Millisecond {
		t.Errorf("debounce: got %s", cfg.Session.DebounceWindow)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.Rest.AllowedOrigins, want) {
		t.Errorf("origins: got %v", cfg.Rest.AllowedOrigins)
	}
	if cfg.FluentBit.Enabled {
		t.Error("fluent bit without host should be disabled")
	}
}

func TestLoadConfigRequiresListingAPI(t *testing.T) {
	t.Setenv("LISTING_API_URL", "")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error without LISTING_API_URL")
	}
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("BAD_INT", "ten")
	t.Setenv("BAD_DURATION", "soon")
	t.Setenv("EMPTY_LIST", " , ")

	if got := getEnvAsInt("BAD_INT", 3); got != 3 {
		t.Errorf("int: got %d", got)
	}
	if got := getEnvAsDuration("BAD_DURATION", time.Second); got != time.Second {
		t.Errorf("duration: got %s", got)
	}
	if got := getEnvAsList("EMPTY_LIST", []string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("list: got %v", got)
	}
}
