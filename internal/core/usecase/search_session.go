package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/activefilters"
	"search-service/internal/core/debounce"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
	"search-service/internal/core/searchurl"

	"github.com/google/uuid"
)

// SessionDeps - внешние зависимости поисковой сессии
type SessionDeps struct {
	Listings     port.ListingSearchPort
	Suggest      usecases_port.SuggestPlacesUseCasePort
	PlaceDetails usecases_port.GetPlaceDetailsUseCasePort
	URLWriter    port.URLWriterPort
	Notifier     port.SessionNotifierPort
	// Events может быть nil: аналитика выключена
	Events port.SearchEventsPort
	Clock  debounce.Clock
	Logger port.LoggerPort
}

// SessionOptions - тайминги сессии
type SessionOptions struct {
	DebounceWindow time.Duration
	URLSettleDelay time.Duration
	EventTimeout   time.Duration
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = debounce.DefaultWindow
	}
	if o.URLSettleDelay <= 0 {
		o.URLSettleDelay = DefaultURLSettleDelay
	}
	if o.EventTimeout <= 0 {
		o.EventTimeout = 5 * time.Second
	}
	return o
}

// settledUpdate - то, что проходит через debounce: фильтры вместе с сортировкой
type settledUpdate struct {
	filters    domain.SearchFilters
	sort       domain.Sort
	pageChange bool
}

// SearchSession - одна открытая страница выдачи: живые фильтры,
// debounce, синхронизация URL и исполнитель запросов.
type SearchSession struct {
	id     uuid.UUID
	deps   SessionDeps
	opts   SessionOptions
	logger port.LoggerPort

	ctx    context.Context
	cancel context.CancelFunc

	gate     *debounce.Gate[settledUpdate]
	sync     *Synchronizer
	executor *QueryExecutor

	mu             sync.Mutex
	live           domain.SearchFilters
	sort           domain.Sort
	selection      *domain.PlaceSelection
	suggestionsErr string
	createdAt      time.Time
	lastActivity   time.Time
	closed         bool
}

func NewSearchSession(deps SessionDeps, opts SessionOptions) *SearchSession {
	if deps.Clock == nil {
		deps.Clock = debounce.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = contextkeys.NoopLogger()
	}
	opts = opts.withDefaults()

	id := uuid.New()
	logger := deps.Logger.WithFields(port.Fields{"session_id": id.String()})
	// фоновые задачи сессии (таймеры, запросы, публикации) логируют через этот контекст
	ctx, cancel := context.WithCancel(contextkeys.ContextWithLogger(context.Background(), logger))
	now := deps.Clock.Now()

	s := &SearchSession{
		id:           id,
		deps:         deps,
		opts:         opts,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		live:         domain.DefaultFilters(),
		sort:         domain.Sort{By: domain.DefaultSortBy, Order: domain.DefaultSortOrder},
		createdAt:    now,
		lastActivity: now,
	}

	s.gate = debounce.NewGate(deps.Clock, opts.DebounceWindow, s.handleSettled)
	s.sync = NewSynchronizer(SynchronizerConfig{
		SessionID:   id,
		Writer:      deps.URLWriter,
		Clock:       deps.Clock,
		SettleDelay: opts.URLSettleDelay,
		Logger:      s.logger,
		OnIdle:      s.handleURLSettled,
	})
	s.executor = NewQueryExecutor(QueryExecutorConfig{
		Search:   deps.Listings,
		Logger:   s.logger,
		OnUpdate: s.handleQueryUpdate,
		OnResult: s.handleQueryResult,
	})
	return s
}

func (s *SearchSession) ID() uuid.UUID {
	return s.id
}

// Mount разбирает URL один раз и сразу (без debounce) выпускает фильтры.
func (s *SearchSession) Mount(rawURL string) {
	filters, ok := s.sync.Initialize(rawURL)
	if !ok {
		return
	}

	s.mu.Lock()
	s.live = filters
	sort := s.sort
	s.mu.Unlock()

	s.logger.Info("Search session mounted", port.Fields{"url": rawURL})
	s.gate.Prime(settledUpdate{filters: filters, sort: sort})
}

// UpdateFilters применяет правки полей. Любая правка, кроме явной смены
// страницы, возвращает на первую страницу.
// Координаты приходят только из выбора места (SelectPlace) или из URL при монтаже.
func (s *SearchSession) UpdateFilters(values map[string]string) (domain.SearchFilters, error) {
	for key := range values {
		if key == domain.KeyLatitude || key == domain.KeyLongitude {
			return domain.SearchFilters{}, fmt.Errorf("%w: %s is set by place selection", domain.ErrUnknownFilter, key)
		}
	}
	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		if err := searchurl.ApplyValues(f, values); err != nil {
			return false, err
		}
		_, pageChange := values[domain.KeyPage]
		if !pageChange {
			f.Page = domain.DefaultPage
		}
		if _, ok := values[domain.KeyLocation]; ok {
			s.dropStaleSelectionLocked(f)
		}
		return pageChange && len(values) == 1, nil
	})
}

// SetPage - явная смена страницы
func (s *SearchSession) SetPage(page int) (domain.SearchFilters, error) {
	if page < 1 {
		return domain.SearchFilters{}, domain.ErrInvalidPage
	}
	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		f.Page = page
		return true, nil
	})
}

// SetSort меняет сортировку; неизвестный порядок заменяется на desc.
func (s *SearchSession) SetSort(by, order string) (domain.Sort, error) {
	by = strings.TrimSpace(by)
	if by == "" {
		by = domain.DefaultSortBy
	}
	order = strings.ToLower(strings.TrimSpace(order))
	if order != "asc" && order != "desc" {
		order = domain.DefaultSortOrder
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Sort{}, domain.ErrSessionClosed
	}
	s.sort = domain.Sort{By: by, Order: order}
	s.live.Page = domain.DefaultPage
	update := settledUpdate{filters: s.live.Clone(), sort: s.sort}
	s.touchLocked()
	s.mu.Unlock()

	s.gate.Push(update)
	return update.sort, nil
}

// RemoveFilter снимает один активный фильтр
func (s *SearchSession) RemoveFilter(key string) (domain.SearchFilters, error) {
	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		next, err := activefilters.Remove(*f, key)
		if err != nil {
			return false, err
		}
		*f = next
		if key == domain.KeyLocation {
			s.selection = nil
		}
		return false, nil
	})
}

// ClearFilters снимает все считаемые фильтры
func (s *SearchSession) ClearFilters() (domain.SearchFilters, error) {
	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		*f = activefilters.ClearAll(*f)
		return false, nil
	})
}

// EditLocation - ввод текста в поле места. Если текст разошелся с выбранным
// местом, выбор и координаты сбрасываются, а сам текст остается.
func (s *SearchSession) EditLocation(text string) (domain.SearchFilters, error) {
	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			f.Location, f.Latitude, f.Longitude = nil, nil, nil
			s.selection = nil
		} else {
			if f.Location == nil || *f.Location != trimmed {
				f.Latitude, f.Longitude = nil, nil
			}
			f.Location = &trimmed
			s.dropStaleSelectionLocked(f)
		}
		f.Page = domain.DefaultPage
		return false, nil
	})
}

// SelectPlace атомарно задает место и его координаты по выбранной подсказке.
func (s *SearchSession) SelectPlace(ctx context.Context, placeID string) (domain.SearchFilters, error) {
	details, err := s.deps.PlaceDetails.Execute(ctx, placeID)
	if err != nil {
		s.mu.Lock()
		s.suggestionsErr = err.Error()
		s.mu.Unlock()
		return domain.SearchFilters{}, err
	}

	return s.mutate(func(f *domain.SearchFilters) (bool, error) {
		name := details.Name
		if strings.TrimSpace(name) == "" {
			name = details.FormattedAddress
		}
		lat, lng := details.Latitude, details.Longitude
		f.Location = &name
		f.Latitude = &lat
		f.Longitude = &lng
		f.Page = domain.DefaultPage
		s.selection = &domain.PlaceSelection{PlaceID: details.PlaceID, Name: name}
		s.suggestionsErr = ""
		return false, nil
	})
}

// Suggest - автодополнение для поля места. Ошибка сохраняется в состоянии
// сессии и не мешает вводу.
func (s *SearchSession) Suggest(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	suggestions, err := s.deps.Suggest.Execute(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if err != nil {
		s.suggestionsErr = err.Error()
		return []domain.PlaceSuggestion{}, err
	}
	s.suggestionsErr = ""
	return suggestions, nil
}

// HandleNavigation - браузер сообщил о смене URL
func (s *SearchSession) HandleNavigation(rawURL string) domain.NavigationOutcome {
	s.touch()
	return s.sync.HandleNavigation(rawURL)
}

// AcknowledgeNavigation - браузер подтвердил нашу перезапись URL
func (s *SearchSession) AcknowledgeNavigation(rawURL string) bool {
	s.touch()
	return s.sync.Acknowledge(rawURL)
}

// View - снимок состояния сессии
func (s *SearchSession) View() domain.SessionView {
	settled, ok := s.gate.Settled()

	s.mu.Lock()
	live := s.live.Clone()
	view := domain.SessionView{
		ID:               s.id,
		Filters:          live,
		Sort:             s.sort,
		SuggestionsError: s.suggestionsErr,
		CreatedAt:        s.createdAt,
		LastActivityAt:   s.lastActivity,
	}
	if s.selection != nil {
		sel := *s.selection
		view.Selection = &sel
	}
	s.mu.Unlock()

	if ok {
		view.SettledFilters = settled.filters
	} else {
		view.SettledFilters = live
	}
	view.State = s.sync.State()
	view.URL = s.sync.CurrentURL()
	view.Title = searchurl.Title(view.SettledFilters)
	view.Description = searchurl.Description(view.SettledFilters)
	view.ActiveFilters = activefilters.List(live)
	view.ActiveFilterCount = activefilters.Count(live)
	view.RentRangeInverted = live.RentRangeInverted()
	view.Query = s.executor.Snapshot()
	return view
}

func (s *SearchSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Close останавливает таймеры и отменяет запрос в полете. Повторный вызов безопасен.
func (s *SearchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.gate.Stop()
	s.sync.Stop()
	s.executor.Cancel()

	s.notify(domain.SessionEventClosed, struct{}{})
	s.cancel()
	s.logger.Info("Search session closed", nil)
}

// mutate применяет правку к живым фильтрам под замком и отдает результат в debounce.
// Гейт вызывается вне замка: его колбэк сам берет замок сессии.
func (s *SearchSession) mutate(edit func(f *domain.SearchFilters) (pageChange bool, err error)) (domain.SearchFilters, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.SearchFilters{}, domain.ErrSessionClosed
	}

	next := s.live.Clone()
	pageChange, err := edit(&next)
	if err != nil {
		s.mu.Unlock()
		return domain.SearchFilters{}, err
	}
	s.live = next.Normalize()
	update := settledUpdate{filters: s.live.Clone(), sort: s.sort, pageChange: pageChange}
	s.touchLocked()
	s.mu.Unlock()

	s.gate.Push(update)
	return update.filters, nil
}

// dropStaleSelectionLocked забывает выбранное место, если текст с ним разошелся
func (s *SearchSession) dropStaleSelectionLocked(f *domain.SearchFilters) {
	if s.selection == nil {
		return
	}
	if f.Location == nil || *f.Location != s.selection.Name {
		s.selection = nil
		f.Latitude, f.Longitude = nil, nil
	}
}

func (s *SearchSession) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
}

func (s *SearchSession) touchLocked() {
	s.lastActivity = s.deps.Clock.Now()
}

func (s *SearchSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// handleSettled - единственный потребитель гейта: URL и запрос видят одно значение
func (s *SearchSession) handleSettled(u settledUpdate) {
	if s.isClosed() {
		return
	}

	s.notify(domain.SessionEventFilters, domain.FiltersEventData{
		Filters:           u.filters,
		Sort:              u.sort,
		URL:               searchurl.BuildURL(u.filters),
		ActiveFilters:     activefilters.List(u.filters),
		ActiveFilterCount: activefilters.Count(u.filters),
	})

	s.sync.Publish(s.ctx, u.filters)
	s.executor.Execute(s.ctx, domain.ListingQuery{Filters: u.filters, Sort: u.sort}, ExecuteOptions{
		PageChange:       u.pageChange,
		WriteLatchActive: s.sync.IsWriting(),
	})
}

// handleURLSettled - защелка снята; запрос, отложенный из-за перезаписи URL, уходит сейчас
func (s *SearchSession) handleURLSettled() {
	if s.isClosed() {
		return
	}
	u, ok := s.gate.Settled()
	if !ok {
		return
	}
	s.executor.Execute(s.ctx, domain.ListingQuery{Filters: u.filters, Sort: u.sort}, ExecuteOptions{
		PageChange:       u.pageChange,
		WriteLatchActive: s.sync.IsWriting(),
	})
}

func (s *SearchSession) handleQueryUpdate(snapshot domain.QuerySnapshot) {
	s.notify(domain.SessionEventResults, snapshot)
}

func (s *SearchSession) handleQueryResult(ctx context.Context, query domain.ListingQuery, page *domain.ListingPage) {
	if s.deps.Events == nil {
		return
	}

	f := query.Filters
	event := domain.SearchPerformedEvent{
		EventID:         uuid.New(),
		SessionID:       s.id,
		OccurredAt:      s.deps.Clock.Now().UTC(),
		ActiveFilters:   activefilters.Keys(f),
		Page:            page.Page,
		TotalProperties: page.TotalProperties,
		SortBy:          query.Sort.By,
		SortOrder:       query.Sort.Order,
	}
	if event.Page < 1 {
		event.Page = f.Page
	}
	if f.PropertyType != nil {
		event.PropertyType = string(*f.PropertyType)
	}
	if f.Location != nil {
		event.Location = *f.Location
	}
	if f.HasCoordinates() {
		event.Latitude, event.Longitude = f.Latitude, f.Longitude
	}

	// ответ уже получен: отмена запроса не должна обрывать публикацию
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.EventTimeout)
	defer cancel()
	if err := s.deps.Events.PublishSearchPerformed(pubCtx, event); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Failed to publish search event", err, port.Fields{"event_id": event.EventID.String()})
	}
}

func (s *SearchSession) notify(eventType string, data interface{}) {
	if s.deps.Notifier == nil {
		return
	}
	s.deps.Notifier.Notify(s.ctx, domain.SessionEvent{SessionID: s.id, Type: eventType, Data: data})
}
