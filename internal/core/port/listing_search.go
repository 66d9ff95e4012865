package port

import (
	"context"
	"search-service/internal/core/domain"
)

// ListingSearchPort - бэкенд, который отдает постраничную выдачу объявлений
type ListingSearchPort interface {
	SearchListings(ctx context.Context, query domain.ListingQuery) (*domain.ListingPage, error)
}
