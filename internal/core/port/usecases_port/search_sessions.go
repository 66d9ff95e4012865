package usecases_port

import (
	"context"
	"search-service/internal/core/domain"

	"github.com/google/uuid"
)

// SearchSessionsPort - операции над открытыми страницами выдачи.
// Все методы с sessionID возвращают domain.ErrSessionNotFound для неизвестной сессии.
type SearchSessionsPort interface {
	Create(ctx context.Context, rawURL string) (domain.SessionView, error)
	Get(ctx context.Context, sessionID uuid.UUID) (domain.SessionView, error)
	Close(ctx context.Context, sessionID uuid.UUID) error

	UpdateFilters(ctx context.Context, sessionID uuid.UUID, values map[string]string) (domain.SessionView, error)
	RemoveFilter(ctx context.Context, sessionID uuid.UUID, key string) (domain.SessionView, error)
	ClearFilters(ctx context.Context, sessionID uuid.UUID) (domain.SessionView, error)
	SetPage(ctx context.Context, sessionID uuid.UUID, page int) (domain.SessionView, error)
	SetSort(ctx context.Context, sessionID uuid.UUID, by, order string) (domain.SessionView, error)

	EditLocation(ctx context.Context, sessionID uuid.UUID, text string) (domain.SessionView, error)
	SelectPlace(ctx context.Context, sessionID uuid.UUID, placeID string) (domain.SessionView, error)
	Suggest(ctx context.Context, sessionID uuid.UUID, input string) ([]domain.PlaceSuggestion, error)

	HandleNavigation(ctx context.Context, sessionID uuid.UUID, rawURL string) (domain.NavigationOutcome, error)
	AcknowledgeNavigation(ctx context.Context, sessionID uuid.UUID, rawURL string) (bool, error)
}
