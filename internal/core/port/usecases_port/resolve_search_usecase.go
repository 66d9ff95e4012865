package usecases_port

import (
	"context"
	"search-service/internal/core/domain"
)

type ResolveSearchUseCasePort interface {
	Execute(ctx context.Context, rawURL string) domain.ResolvedSearch
}
