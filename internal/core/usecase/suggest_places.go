package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

type SuggestPlacesUseCase struct {
	places port.PlacesPort
}

func NewSuggestPlacesUseCase(places port.PlacesPort) *SuggestPlacesUseCase {
	return &SuggestPlacesUseCase{places: places}
}

// Execute возвращает варианты автодополнения. Для ввода короче
// MinSuggestionInputLength внешний сервис не вызывается.
func (uc *SuggestPlacesUseCase) Execute(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SuggestPlaces",
		"input":    input,
	})

	trimmed := strings.TrimSpace(input)
	if utf8.RuneCountInString(trimmed) < domain.MinSuggestionInputLength {
		ucLogger.Debug("Input too short, autocomplete skipped", nil)
		return []domain.PlaceSuggestion{}, nil
	}

	suggestions, err := uc.places.Suggestions(ctx, trimmed)
	if err != nil {
		ucLogger.Error("Failed to get place suggestions", err, nil)
		return nil, fmt.Errorf("failed to get place suggestions: %w", err)
	}

	ucLogger.Debug("Suggestions received", port.Fields{"count": len(suggestions)})
	return suggestions, nil
}
