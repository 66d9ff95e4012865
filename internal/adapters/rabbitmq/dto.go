package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// SearchPerformedEventDTO - тело сообщения SearchPerformedEvent/1.0.0
type SearchPerformedEventDTO struct {
	EventID         uuid.UUID `json:"event_id"`
	SessionID       uuid.UUID `json:"session_id"`
	OccurredAt      time.Time `json:"occurred_at"`
	PropertyType    string    `json:"property_type,omitempty"`
	Location        string    `json:"location,omitempty"`
	Geohash         string    `json:"geohash,omitempty"`
	ActiveFilters   []string  `json:"active_filters"`
	Page            int       `json:"page"`
	TotalProperties int       `json:"total_properties"`
	SortBy          string    `json:"sort_by"`
	SortOrder       string    `json:"sort_order"`
}
