package fluentlogger

import "testing"

func TestNewClientRequiresTagPrefix(t *testing.T) {
	if _, err := NewClient(Config{Host: "127.0.0.1", Port: 24224}); err == nil {
		t.Error("empty tag prefix should be rejected")
	}
}
