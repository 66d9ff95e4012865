package notifier

import (
	"search-service/internal/core/domain"
)

// PropertyDTO - карточка объявления в событиях и ответах API
type PropertyDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	PropertyType string   `json:"propertyType"`
	Location     string   `json:"location"`
	Rent         int      `json:"rent"`
	Bedrooms     int      `json:"bedrooms"`
	FurnishType  string   `json:"furnishType,omitempty"`
	TenantType   string   `json:"tenantType,omitempty"`
	Images       []string `json:"images"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	IsPrime      bool     `json:"isPrime"`
}

// QuerySnapshotDTO - состояние выдачи (событие "results")
type QuerySnapshotDTO struct {
	Loading         bool          `json:"loading"`
	HasRun          bool          `json:"hasRun"`
	Properties      []PropertyDTO `json:"properties"`
	TotalProperties int           `json:"totalProperties"`
	Page            int           `json:"page"`
	TotalPages      int           `json:"totalPages"`
	HasNext         bool          `json:"hasNext"`
	HasPrev         bool          `json:"hasPrev"`
	Error           string        `json:"error,omitempty"`
}

type SortDTO struct {
	By    string `json:"by"`
	Order string `json:"order"`
}

// FiltersEventDTO - устоявшиеся фильтры (событие "filters")
type FiltersEventDTO struct {
	Filters           domain.SearchFilters  `json:"filters"`
	Sort              SortDTO               `json:"sort"`
	URL               string                `json:"url"`
	ActiveFilters     []domain.ActiveFilter `json:"activeFilters"`
	ActiveFilterCount int                   `json:"activeFilterCount"`
}

type ClosedEventDTO struct {
	SessionID string `json:"sessionId"`
}

func ToQuerySnapshotDTO(s domain.QuerySnapshot) QuerySnapshotDTO {
	props := make([]PropertyDTO, 0, len(s.Properties))
	for _, p := range s.Properties {
		props = append(props, toPropertyDTO(p))
	}
	return QuerySnapshotDTO{
		Loading:         s.Loading,
		HasRun:          s.HasRun,
		Properties:      props,
		TotalProperties: s.TotalProperties,
		Page:            s.Page,
		TotalPages:      s.TotalPages,
		HasNext:         s.HasNext,
		HasPrev:         s.HasPrev,
		Error:           s.Error,
	}
}

func ToSortDTO(s domain.Sort) SortDTO {
	return SortDTO{By: s.By, Order: s.Order}
}

func toPropertyDTO(p domain.Property) PropertyDTO {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return PropertyDTO{
		ID:           p.ID,
		Title:        p.Title,
		PropertyType: p.PropertyType,
		Location:     p.Location,
		Rent:         p.Rent,
		Bedrooms:     p.Bedrooms,
		FurnishType:  p.FurnishType,
		TenantType:   p.TenantType,
		Images:       images,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		IsPrime:      p.IsPrime,
	}
}

// eventPayload приводит данные события к JSON-представлению
func eventPayload(event domain.SessionEvent) interface{} {
	if event.Type == domain.SessionEventClosed {
		return ClosedEventDTO{SessionID: event.SessionID.String()}
	}
	switch data := event.Data.(type) {
	case domain.QuerySnapshot:
		return ToQuerySnapshotDTO(data)
	case domain.FiltersEventData:
		activeFilters := data.ActiveFilters
		if activeFilters == nil {
			activeFilters = []domain.ActiveFilter{}
		}
		return FiltersEventDTO{
			Filters:           data.Filters,
			Sort:              ToSortDTO(data.Sort),
			URL:               data.URL,
			ActiveFilters:     activeFilters,
			ActiveFilterCount: data.ActiveFilterCount,
		}
	case domain.NavigateEventData:
		return data
	}
	return event.Data
}
