package usecase

import (
	"context"
	"sync"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

// ExecuteOptions - обстоятельства, при которых пришли устоявшиеся фильтры
type ExecuteOptions struct {
	// PageChange - изменилась только страница
	PageChange bool
	// WriteLatchActive - идет наша перезапись URL, запрос откладывается
	WriteLatchActive bool
}

type QueryExecutorConfig struct {
	Search port.ListingSearchPort
	Logger port.LoggerPort
	// OnUpdate получает каждый новый снимок (loading, результат, ошибка)
	OnUpdate func(domain.QuerySnapshot)
	// OnResult вызывается только для актуального успешного ответа
	OnResult func(ctx context.Context, query domain.ListingQuery, page *domain.ListingPage)
}

// QueryExecutor выполняет поиск по устоявшимся фильтрам.
// Побеждает последний запрос: ответ устаревшей эпохи отбрасывается.
type QueryExecutor struct {
	cfg    QueryExecutorConfig
	logger port.LoggerPort

	mu       sync.Mutex
	epoch    uint64
	cancel   context.CancelFunc
	hasRun   bool
	closed   bool
	snapshot domain.QuerySnapshot
}

func NewQueryExecutor(cfg QueryExecutorConfig) *QueryExecutor {
	logger := cfg.Logger
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	return &QueryExecutor{
		cfg:    cfg,
		logger: logger.WithFields(port.Fields{"component": "QueryExecutor"}),
	}
}

// Execute запускает запрос, если позволяют условия. Возвращает true, если запрос ушел.
func (e *QueryExecutor) Execute(ctx context.Context, query domain.ListingQuery, opts ExecuteOptions) bool {
	query.Filters = query.Filters.Normalize()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	if opts.WriteLatchActive {
		e.mu.Unlock()
		e.logger.Debug("Query deferred: URL rewrite in flight", nil)
		return false
	}
	// смена страницы разрешена без места и типа, но только после первого запроса
	if !query.Filters.HasLocationOrType() && !(opts.PageChange && e.hasRun) {
		e.mu.Unlock()
		e.logger.Debug("Query skipped: no location or property type", nil)
		return false
	}

	if e.cancel != nil {
		e.cancel()
	}
	e.epoch++
	epoch := e.epoch
	reqCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.hasRun = true
	e.snapshot.Loading = true
	e.snapshot.HasRun = true
	e.snapshot.Error = ""
	snapshot := e.snapshot
	e.mu.Unlock()

	e.logger.Debug("Query started", port.Fields{
		"epoch":     epoch,
		"page":      query.Filters.Page,
		"limit":     query.Filters.Limit,
		"sort_by":   query.Sort.By,
		"sort_desc": query.Sort.Order == "desc",
	})
	e.publish(snapshot)

	go e.run(reqCtx, cancel, epoch, query)
	return true
}

func (e *QueryExecutor) run(ctx context.Context, cancel context.CancelFunc, epoch uint64, query domain.ListingQuery) {
	defer cancel()

	page, err := e.cfg.Search.SearchListings(ctx, query)

	e.mu.Lock()
	if e.closed || epoch != e.epoch {
		e.mu.Unlock()
		e.logger.Debug("Stale query response discarded", port.Fields{"epoch": epoch})
		return
	}
	e.cancel = nil

	if err != nil {
		e.snapshot = domain.QuerySnapshot{
			HasRun: true,
			Page:   query.Filters.Page,
			Error:  err.Error(),
		}
	} else {
		e.snapshot = domain.QuerySnapshot{
			HasRun:          true,
			Properties:      page.Properties,
			TotalProperties: page.TotalProperties,
			Page:            page.Page,
			TotalPages:      page.TotalPages,
			HasNext:         page.HasNext,
			HasPrev:         page.HasPrev,
		}
	}
	snapshot := e.snapshot
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("Query failed", err, port.Fields{"epoch": epoch})
	} else {
		e.logger.Debug("Query finished", port.Fields{
			"epoch":            epoch,
			"total_properties": page.TotalProperties,
			"returned":         len(page.Properties),
		})
	}

	e.publish(snapshot)
	if err == nil && e.cfg.OnResult != nil {
		e.cfg.OnResult(ctx, query, page)
	}
}

// Snapshot - текущее состояние выдачи
func (e *QueryExecutor) Snapshot() domain.QuerySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// HasRun - был ли хотя бы один запрос
func (e *QueryExecutor) HasRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasRun
}

// Cancel отменяет запрос в полете и запрещает новые. Ответ отмененного
// запроса никогда не попадает в снимок.
func (e *QueryExecutor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.epoch++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.snapshot.Loading = false
}

func (e *QueryExecutor) publish(snapshot domain.QuerySnapshot) {
	if e.cfg.OnUpdate != nil {
		e.cfg.OnUpdate(snapshot)
	}
}
