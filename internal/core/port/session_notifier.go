package port

import (
	"context"
	"search-service/internal/core/domain"
)

// SessionNotifierPort доставляет события сессии подписчикам (SSE)
type SessionNotifierPort interface {
	Notify(ctx context.Context, event domain.SessionEvent)
}
