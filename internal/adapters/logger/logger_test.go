package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"search-service/internal/core/port"
)

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	logger.Debug("hidden", nil)
	logger.WithFields(port.Fields{"component": "Synchronizer"}).
		Error("Failed to rewrite URL", errors.New("boom"), port.Fields{"url": "/search"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "Failed to rewrite URL" || rec["component"] != "Synchronizer" || rec["url"] != "/search" || rec["error"] != "boom" {
		t.Errorf("record: got %v", rec)
	}
}

type recordingPoster struct {
	tags     []string
	messages []map[string]interface{}
}

func (p *recordingPoster) Post(tag string, message interface{}) error {
	p.tags = append(p.tags, tag)
	p.messages = append(p.messages, map[string]interface{}(message.(port.Fields)))
	return nil
}

func TestFluentLoggerAdapterLevelsAndFields(t *testing.T) {
	poster := &recordingPoster{}
	adapter := newFluentLoggerAdapter(poster, slog.LevelInfo)
	adapter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger := adapter.WithFields(port.Fields{"service_name": "search-service"})
	logger.Debug("dropped", nil)
	logger.Warn("Place cache lookup failed", port.Fields{"place_id": "ChIJ1"})

	if len(poster.tags) != 1 || poster.tags[0] != "warn" {
		t.Fatalf("tags: got %v", poster.tags)
	}
	msg := poster.messages[0]
	if msg["message"] != "Place cache lookup failed" || msg["service_name"] != "search-service" || msg["place_id"] != "ChIJ1" {
		t.Errorf("message: got %v", msg)
	}
	if msg["timestamp"] != "2024-01-02T03:04:05Z" {
		t.Errorf("timestamp: got %v", msg["timestamp"])
	}
	if len(adapter.fields) != 0 {
		t.Error("WithFields must not mutate the parent adapter")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	if _, err := NewMultiloggerAdapter(); err == nil {
		t.Error("expected error without loggers")
	}

	a, b := &recordingPoster{}, &recordingPoster{}
	multi, err := NewMultiloggerAdapter(newFluentLoggerAdapter(a, slog.LevelDebug), nil, newFluentLoggerAdapter(b, slog.LevelDebug))
	if err != nil {
		t.Fatal(err)
	}

	multi.WithFields(port.Fields{"session_id": "s1"}).Info("Search session mounted", nil)

	for i, p := range []*recordingPoster{a, b} {
		if len(p.messages) != 1 || p.messages[0]["session_id"] != "s1" {
			t.Errorf("logger %d: got %v", i, p.messages)
		}
	}
}
