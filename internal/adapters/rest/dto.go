package rest

import (
	"time"

	"search-service/internal/adapters/notifier"
	"search-service/internal/core/domain"
)

type CreateSessionRequest struct {
	URL string `json:"url"`
}

type SetPageRequest struct {
	Page int `json:"page"`
}

type SetSortRequest struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type EditLocationRequest struct {
	Text string `json:"text"`
}

type SelectPlaceRequest struct {
	PlaceID string `json:"place_id"`
}

type NavigationRequest struct {
	URL string `json:"url"`
}

type NavigationResponse struct {
	Outcome string `json:"outcome"`
}

type AcknowledgeResponse struct {
	Released bool `json:"released"`
}

type PlaceSelectionDTO struct {
	PlaceID string `json:"placeId"`
	Name    string `json:"name"`
}

type SessionResponse struct {
	ID                string                    `json:"id"`
	State             string                    `json:"state"`
	Filters           domain.SearchFilters      `json:"filters"`
	SettledFilters    domain.SearchFilters      `json:"settledFilters"`
	Sort              notifier.SortDTO          `json:"sort"`
	URL               string                    `json:"url"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	ActiveFilters     []domain.ActiveFilter     `json:"activeFilters"`
	ActiveFilterCount int                       `json:"activeFilterCount"`
	RentRangeInverted bool                      `json:"rentRangeInverted"`
	Selection         *PlaceSelectionDTO        `json:"selection,omitempty"`
	SuggestionsError  string                    `json:"suggestionsError,omitempty"`
	Query             notifier.QuerySnapshotDTO `json:"query"`
	CreatedAt         time.Time                 `json:"createdAt"`
	LastActivityAt    time.Time                 `json:"lastActivityAt"`
}

type ResolveResponse struct {
	Filters           domain.SearchFilters  `json:"filters"`
	CanonicalURL      string                `json:"canonicalUrl"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	ActiveFilters     []domain.ActiveFilter `json:"activeFilters"`
	ActiveFilterCount int                   `json:"activeFilterCount"`
	RentRangeInverted bool                  `json:"rentRangeInverted"`
}

type PlaceSuggestionDTO struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

type PlaceDetailsDTO struct {
	PlaceID          string  `json:"placeId"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formattedAddress"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

func toSessionResponse(v domain.SessionView) SessionResponse {
	resp := SessionResponse{
		ID:                v.ID.String(),
		State:             v.State.String(),
		Filters:           v.Filters,
		SettledFilters:    v.SettledFilters,
		Sort:              notifier.ToSortDTO(v.Sort),
		URL:               v.URL,
		Title:             v.Title,
		Description:       v.Description,
		ActiveFilters:     nonNilFilters(v.ActiveFilters),
		ActiveFilterCount: v.ActiveFilterCount,
		RentRangeInverted: v.RentRangeInverted,
		SuggestionsError:  v.SuggestionsError,
		Query:             notifier.ToQuerySnapshotDTO(v.Query),
		CreatedAt:         v.CreatedAt,
		LastActivityAt:    v.LastActivityAt,
	}
	if v.Selection != nil {
		resp.Selection = &PlaceSelectionDTO{PlaceID: v.Selection.PlaceID, Name: v.Selection.Name}
	}
	return resp
}

func toResolveResponse(r domain.ResolvedSearch) ResolveResponse {
	return ResolveResponse{
		Filters:           r.Filters,
		CanonicalURL:      r.CanonicalURL,
		Title:             r.Title,
		Description:       r.Description,
		ActiveFilters:     nonNilFilters(r.ActiveFilters),
		ActiveFilterCount: r.ActiveFilterCount,
		RentRangeInverted: r.RentRangeInverted,
	}
}

func toSuggestionDTOs(list []domain.PlaceSuggestion) []PlaceSuggestionDTO {
	out := make([]PlaceSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, PlaceSuggestionDTO{
			PlaceID:       s.PlaceID,
			Description:   s.Description,
			MainText:      s.MainText,
			SecondaryText: s.SecondaryText,
		})
	}
	return out
}

func toPlaceDetailsDTO(d domain.PlaceDetails) PlaceDetailsDTO {
	return PlaceDetailsDTO{
		PlaceID:          d.PlaceID,
		Name:             d.Name,
		FormattedAddress: d.FormattedAddress,
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
	}
}

func nonNilFilters(list []domain.ActiveFilter) []domain.ActiveFilter {
	if list == nil {
		return []domain.ActiveFilter{}
	}
	return list
}
