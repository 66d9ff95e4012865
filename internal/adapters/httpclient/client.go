// Package httpclient - общая обвязка исходящих HTTP-вызовов: повторы,
// трассировка и лог через LoggerPort.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/port"

	"github.com/hashicorp/go-retryablehttp"
)

// maxErrorBody - сколько байт тела ответа попадает в текст ошибки
const maxErrorBody = 512

type Config struct {
	Timeout time.Duration
	// RetryMax = 0 отключает повторы
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// New собирает retryablehttp-клиент. После исчерпания попыток ответ
// возвращается как есть, чтобы вызывающий видел код и тело.
func New(cfg Config, logger port.LoggerPort) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if logger != nil {
		client.Logger = &leveledLogger{logger: logger}
	}
	return client
}

// NewRequest - GET/POST с X-Trace-ID из контекста
func NewRequest(ctx context.Context, method, url string, body interface{}) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// StatusError - текст ошибки для ответа не-200
func StatusError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s returned non-200 status: %d, body: %s", service, resp.StatusCode, string(body))
}

// DecodeJSON читает тело ответа в v
func DecodeJSON(resp *http.Response, v interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// leveledLogger переводит логи retryablehttp в LoggerPort
type leveledLogger struct {
	logger port.LoggerPort
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, nil, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, port.FieldsFromKeyValues(keysAndValues...))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, port.FieldsFromKeyValues(keysAndValues...))
}
