package usecases_port

import (
	"context"
	"search-service/internal/core/domain"
)

type SuggestPlacesUseCasePort interface {
	// Пустой срез для ввода короче двух символов
	Execute(ctx context.Context, input string) ([]domain.PlaceSuggestion, error)
}

type GetPlaceDetailsUseCasePort interface {
	Execute(ctx context.Context, placeID string) (*domain.PlaceDetails, error)
}
