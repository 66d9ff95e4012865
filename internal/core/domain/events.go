package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SearchPerformedEventType    = "SearchPerformedEvent"
	SearchPerformedEventVersion = "1.0.0"
)

// SearchPerformedEvent - аналитическое событие о выполненном поиске.
// Координаты наружу не уходят: адаптер публикации сворачивает их в geohash.
type SearchPerformedEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	SessionID       uuid.UUID `json:"session_id"`
	OccurredAt      time.Time `json:"occurred_at"`
	PropertyType    string    `json:"property_type,omitempty"`
	Location        string    `json:"location,omitempty"`
	Latitude        *float64  `json:"-"`
	Longitude       *float64  `json:"-"`
	ActiveFilters   []string  `json:"active_filters"`
	Page            int       `json:"page"`
	TotalProperties int       `json:"total_properties"`
	SortBy          string    `json:"sort_by"`
	SortOrder       string    `json:"sort_order"`
}
