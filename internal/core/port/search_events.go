package port

import (
	"context"
	"search-service/internal/core/domain"
)

// SearchEventsPort публикует аналитические события поиска
type SearchEventsPort interface {
	PublishSearchPerformed(ctx context.Context, event domain.SearchPerformedEvent) error
}
