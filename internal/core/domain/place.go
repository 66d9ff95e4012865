package domain

import "time"

// MinSuggestionInputLength - автодополнение не вызывается для более коротких строк
const MinSuggestionInputLength = 2

// PlaceSuggestion - один вариант автодополнения
type PlaceSuggestion struct {
	PlaceID       string
	Description   string
	MainText      string
	SecondaryText string
}

// PlaceDetails - подробности о выбранном месте
type PlaceDetails struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
	FetchedAt        time.Time
}

// PlaceSelection - эфемерное состояние выбора места в сессии.
// Не входит в SearchFilters, но атомарно задает location/latitude/longitude.
type PlaceSelection struct {
	PlaceID string
	Name    string
}
