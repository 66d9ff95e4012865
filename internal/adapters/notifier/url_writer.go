package notifier

import (
	"context"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

// SSEURLWriter - реализация URLWriterPort: просит браузер заменить URL
// через событие "navigate". Браузер подтверждает замену отдельным запросом.
type SSEURLWriter struct {
	notifier *SSENotifier
}

func NewSSEURLWriter(notifier *SSENotifier) (*SSEURLWriter, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	return &SSEURLWriter{notifier: notifier}, nil
}

func (w *SSEURLWriter) WriteURL(ctx context.Context, sessionID uuid.UUID, url string) error {
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}
	if w.notifier.ClientCount(sessionID) == 0 {
		// подтверждения не будет, защелку снимет таймер
		contextkeys.LoggerFromContext(ctx).Debug("URL rewrite sent without connected clients", port.Fields{
			"component":  "SSEURLWriter",
			"session_id": sessionID.String(),
		})
	}
	w.notifier.Notify(ctx, domain.SessionEvent{
		SessionID: sessionID,
		Type:      domain.SessionEventNavigate,
		Data:      domain.NavigateEventData{URL: url},
	})
	return nil
}
