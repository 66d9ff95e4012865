package port

import (
	"context"

	"github.com/google/uuid"
)

// URLWriterPort переписывает адресную строку браузера для сессии.
// Завершение перезаписи подтверждается отдельно (Acknowledge у синхронизатора).
type URLWriterPort interface {
	WriteURL(ctx context.Context, sessionID uuid.UUID, url string) error
}
