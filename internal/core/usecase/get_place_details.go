package usecase

import (
	"context"
	"fmt"
	"strings"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

type GetPlaceDetailsUseCase struct {
	places port.PlacesPort
	cache  port.PlaceCachePort
}

// NewGetPlaceDetailsUseCase: cache может быть nil, тогда детали всегда берутся из сервиса мест.
func NewGetPlaceDetailsUseCase(places port.PlacesPort, cache port.PlaceCachePort) *GetPlaceDetailsUseCase {
	return &GetPlaceDetailsUseCase{places: places, cache: cache}
}

func (uc *GetPlaceDetailsUseCase) Execute(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetPlaceDetails",
		"place_id": placeID,
	})

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, domain.ErrPlaceNotFound
	}

	// Ошибки кэша не фатальны: идем во внешний сервис
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, placeID)
		if err != nil {
			ucLogger.Warn("Place cache lookup failed", port.Fields{"error": err.Error()})
		} else if cached != nil {
			ucLogger.Debug("Place details served from cache", nil)
			return cached, nil
		}
	}

	details, err := uc.places.Details(ctx, placeID)
	if err != nil {
		ucLogger.Error("Failed to get place details", err, nil)
		return nil, fmt.Errorf("failed to get place details: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Put(ctx, *details); err != nil {
			ucLogger.Warn("Failed to cache place details", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Place details resolved", port.Fields{"name": details.Name})
	return details, nil
}
