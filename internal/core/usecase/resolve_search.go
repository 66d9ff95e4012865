package usecase

import (
	"context"

	"search-service/internal/contextkeys"
	"search-service/internal/core/activefilters"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/searchurl"
)

// ResolveSearchUseCase разбирает URL выдачи без создания сессии (SSR, превью ссылок)
type ResolveSearchUseCase struct{}

func NewResolveSearchUseCase() *ResolveSearchUseCase {
	return &ResolveSearchUseCase{}
}

func (uc *ResolveSearchUseCase) Execute(ctx context.Context, rawURL string) domain.ResolvedSearch {
	logger := contextkeys.LoggerFromContext(ctx)

	filters := searchurl.Resolve(rawURL)
	resolved := domain.ResolvedSearch{
		Filters:           filters,
		CanonicalURL:      searchurl.BuildURL(filters),
		Title:             searchurl.Title(filters),
		Description:       searchurl.Description(filters),
		ActiveFilters:     activefilters.List(filters),
		ActiveFilterCount: activefilters.Count(filters),
		RentRangeInverted: filters.RentRangeInverted(),
	}

	logger.Debug("Search URL resolved", port.Fields{
		"use_case":      "ResolveSearch",
		"url":           rawURL,
		"canonical_url": resolved.CanonicalURL,
	})
	return resolved
}
