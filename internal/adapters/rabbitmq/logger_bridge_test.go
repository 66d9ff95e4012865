package rabbitmq

import (
	"errors"
	"testing"

	"search-service/internal/core/port"
)

type logEntry struct {
	level  string
	msg    string
	err    error
	fields port.Fields
}

type recordingLogger struct {
	base    port.Fields
	entries *[]logEntry
}

func (l recordingLogger) record(level, msg string, err error, fields port.Fields) {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, err: err, fields: merged})
}

func (l recordingLogger) Info(msg string, fields port.Fields)  { l.record("info", msg, nil, fields) }
func (l recordingLogger) Warn(msg string, fields port.Fields)  { l.record("warn", msg, nil, fields) }
func (l recordingLogger) Debug(msg string, fields port.Fields) { l.record("debug", msg, nil, fields) }
func (l recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.record("error", msg, err, fields)
}
func (l recordingLogger) WithFields(fields port.Fields) port.LoggerPort {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return recordingLogger{base: merged, entries: l.entries}
}

func TestAMQPLoggerTagsComponent(t *testing.T) {
	var entries []logEntry
	logger := NewAMQPLogger(recordingLogger{entries: &entries}, "rabbitmq_conn_manager")

	dialErr := errors.New("connection refused")
	logger.Info("Connected", "url", "amqp://localhost")
	logger.Error(dialErr, "Reconnect failed", "attempt", 3)

	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.fields["component"] != "rabbitmq_conn_manager" {
			t.Errorf("%s: component field missing: %v", e.msg, e.fields)
		}
	}
	if entries[0].fields["url"] != "amqp://localhost" {
		t.Errorf("info fields: got %v", entries[0].fields)
	}
	if entries[1].level != "error" || !errors.Is(entries[1].err, dialErr) || entries[1].fields["attempt"] != 3 {
		t.Errorf("error entry: got %+v", entries[1])
	}
}
