package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmcloughlin/geohash"
)

// querier - часть pgxpool.Pool, которая нужна репозиторию
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const placeCacheSchema = `
CREATE TABLE IF NOT EXISTS place_cache (
	place_id          TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	geohash           VARCHAR(12) NOT NULL,
	fetched_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS place_cache_geohash_idx ON place_cache (geohash);`

const placeCacheGeohashPrecision = 9

// PlaceCacheRepository - реализация PlaceCachePort поверх PostgreSQL.
// Записи старше ttl считаются промахом.
type PlaceCacheRepository struct {
	pool querier
	ttl  time.Duration
	now  func() time.Time
}

func NewPlaceCacheRepository(pool querier, ttl time.Duration) (*PlaceCacheRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PlaceCacheRepository{pool: pool, ttl: ttl, now: time.Now}, nil
}

// EnsureSchema создает таблицу кэша, если ее нет
func (r *PlaceCacheRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, placeCacheSchema); err != nil {
		return fmt.Errorf("failed to create place_cache table: %w", err)
	}
	return nil
}

// Get возвращает (nil, nil), если места нет в кэше или запись устарела.
func (r *PlaceCacheRepository) Get(ctx context.Context, placeID string) (*domain.PlaceDetails, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PlaceCacheRepository",
		"method":    "Get",
		"place_id":  placeID,
	})

	query := `SELECT place_id, name, formatted_address, latitude, longitude, fetched_at
		FROM place_cache WHERE place_id = $1`

	var details domain.PlaceDetails
	err := r.pool.QueryRow(ctx, query, placeID).Scan(
		&details.PlaceID,
		&details.Name,
		&details.FormattedAddress,
		&details.Latitude,
		&details.Longitude,
		&details.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Place cache miss", nil)
			return nil, nil
		}
		repoLogger.Error("Failed to read place cache", err, nil)
		return nil, fmt.Errorf("failed to read place cache: %w", err)
	}

	if r.ttl > 0 && r.now().Sub(details.FetchedAt) > r.ttl {
		repoLogger.Debug("Place cache entry expired", port.Fields{"fetched_at": details.FetchedAt})
		return nil, nil
	}

	repoLogger.Debug("Place cache hit", nil)
	return &details, nil
}

// Put сохраняет или обновляет детали места
func (r *PlaceCacheRepository) Put(ctx context.Context, details domain.PlaceDetails) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PlaceCacheRepository",
		"method":    "Put",
		"place_id":  details.PlaceID,
	})

	if details.PlaceID == "" {
		return fmt.Errorf("place id cannot be empty")
	}
	fetchedAt := details.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = r.now()
	}

	query := `INSERT INTO place_cache (place_id, name, formatted_address, latitude, longitude, geohash, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			formatted_address = EXCLUDED.formatted_address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geohash = EXCLUDED.geohash,
			fetched_at = EXCLUDED.fetched_at`

	_, err := r.pool.Exec(ctx, query,
		details.PlaceID,
		details.Name,
		details.FormattedAddress,
		details.Latitude,
		details.Longitude,
		geohash.EncodeWithPrecision(details.Latitude, details.Longitude, placeCacheGeohashPrecision),
		fetchedAt.UTC(),
	)
	if err != nil {
		repoLogger.Error("Failed to upsert place cache", err, nil)
		return fmt.Errorf("failed to upsert place cache: %w", err)
	}

	repoLogger.Debug("Place cached", nil)
	return nil
}
