package port

import (
	"context"
	"search-service/internal/core/domain"
)

// PlacesPort - внешний сервис автодополнения мест
type PlacesPort interface {
	Suggestions(ctx context.Context, input string) ([]domain.PlaceSuggestion, error)
	Details(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
}

// PlaceCachePort - кэш деталей мест. Промах возвращает (nil, nil).
type PlaceCachePort interface {
	Get(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
	Put(ctx context.Context, details domain.PlaceDetails) error
}
