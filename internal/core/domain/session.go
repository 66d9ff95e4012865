package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncState - состояние синхронизатора URL
type SyncState int

const (
	SyncUninitialized SyncState = iota
	SyncIdle
	SyncWritingURL
)

func (s SyncState) String() string {
	switch s {
	case SyncUninitialized:
		return "uninitialized"
	case SyncIdle:
		return "idle"
	case SyncWritingURL:
		return "writing_url"
	}
	return "unknown"
}

// NavigationOutcome - как синхронизатор отнесся к событию навигации
type NavigationOutcome int

const (
	// NavigationBeforeInit - сессия еще не смонтирована
	NavigationBeforeInit NavigationOutcome = iota
	// NavigationSelfInflicted - это наша же перезапись URL
	NavigationSelfInflicted
	// NavigationExternal - внешняя навигация; фильтры из нее не пересчитываются
	NavigationExternal
)

func (o NavigationOutcome) String() string {
	switch o {
	case NavigationBeforeInit:
		return "before_init"
	case NavigationSelfInflicted:
		return "self_inflicted"
	case NavigationExternal:
		return "external"
	}
	return "unknown"
}

// QuerySnapshot - то, что исполнитель запросов отдает наружу
type QuerySnapshot struct {
	Loading         bool
	HasRun          bool
	Properties      []Property
	TotalProperties int
	Page            int
	TotalPages      int
	HasNext         bool
	HasPrev         bool
	Error           string
}

// SessionView - снимок состояния поисковой сессии
type SessionView struct {
	ID                uuid.UUID
	State             SyncState
	Filters           SearchFilters
	SettledFilters    SearchFilters
	Sort              Sort
	URL               string
	Title             string
	Description       string
	ActiveFilters     []ActiveFilter
	ActiveFilterCount int
	RentRangeInverted bool
	Selection         *PlaceSelection
	SuggestionsError  string
	Query             QuerySnapshot
	CreatedAt         time.Time
	LastActivityAt    time.Time
}

// Типы событий сессии, которые уходят в браузер
const (
	SessionEventNavigate = "navigate"
	SessionEventFilters  = "filters"
	SessionEventResults  = "results"
	SessionEventClosed   = "closed"
)

// SessionEvent - событие для подписчиков сессии
type SessionEvent struct {
	SessionID uuid.UUID
	Type      string
	Data      interface{}
}

// NavigateEventData - указание браузеру заменить URL (history.replaceState)
type NavigateEventData struct {
	URL string `json:"url"`
}

// FiltersEventData - устоявшиеся фильтры после debounce
type FiltersEventData struct {
	Filters           SearchFilters
	Sort              Sort
	URL               string
	ActiveFilters     []ActiveFilter
	ActiveFilterCount int
}

// ResolvedSearch - результат разбора URL выдачи без сессии
type ResolvedSearch struct {
	Filters           SearchFilters
	CanonicalURL      string
	Title             string
	Description       string
	ActiveFilters     []ActiveFilter
	ActiveFilterCount int
	RentRangeInverted bool
}
