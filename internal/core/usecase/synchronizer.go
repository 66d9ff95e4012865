package usecase

import (
	"context"
	"net/url"
	"sync"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/debounce"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/searchurl"

	"github.com/google/uuid"
)

// DefaultURLSettleDelay - сколько ждать подтверждения перезаписи URL, прежде чем
// снять защелку по таймауту. Если браузер подтверждает позже, защелка уже снята
// и возможен лишний запрос; подтверждение через Acknowledge этого не допускает.
const DefaultURLSettleDelay = 100 * time.Millisecond

type SynchronizerConfig struct {
	SessionID   uuid.UUID
	Writer      port.URLWriterPort
	Clock       debounce.Clock
	SettleDelay time.Duration
	Logger      port.LoggerPort
	// OnIdle вызывается при каждом переходе WritingURL -> Idle
	OnIdle func()
}

// Synchronizer сводит URL и состояние фильтров, не допуская цикла
// "перезаписали URL -> увидели навигацию -> пересчитали фильтры -> перезаписали URL".
//
// Состояния: Uninitialized -> (Initialize) -> Idle <-> WritingURL.
// Разбор URL в фильтры выполняется ровно один раз, в Initialize.
type Synchronizer struct {
	cfg    SynchronizerConfig
	logger port.LoggerPort

	mu          sync.Mutex
	state       domain.SyncState
	currentURL  string
	pendingURL  string
	settleTimer debounce.Timer
	latchGen    uint64
	stopped     bool
}

func NewSynchronizer(cfg SynchronizerConfig) *Synchronizer {
	if cfg.Clock == nil {
		cfg.Clock = debounce.SystemClock{}
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultURLSettleDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	return &Synchronizer{
		cfg: cfg,
		logger: logger.WithFields(port.Fields{
			"component":  "Synchronizer",
			"session_id": cfg.SessionID.String(),
		}),
		state: domain.SyncUninitialized,
	}
}

// Initialize разбирает входящий URL в фильтры. Повторный вызов ничего не делает
// и возвращает false.
func (s *Synchronizer) Initialize(rawURL string) (domain.SearchFilters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.SyncUninitialized {
		return domain.SearchFilters{}, false
	}

	segments, query := searchurl.Split(rawURL)
	filters := searchurl.Merge(segments, query)

	s.currentURL = requestURI(rawURL)
	s.state = domain.SyncIdle

	s.logger.Debug("Filters initialized from URL", port.Fields{
		"url":             rawURL,
		"path_segments":   len(segments),
		"query_overrides": len(query),
	})
	return filters, true
}

// Publish переписывает URL под устоявшиеся фильтры.
// Возвращает true, если перезапись начата (защелка поднята).
func (s *Synchronizer) Publish(ctx context.Context, settled domain.SearchFilters) bool {
	s.mu.Lock()

	if s.stopped || s.state == domain.SyncUninitialized {
		s.mu.Unlock()
		return false
	}
	// без места и типа URL не трогаем
	if !settled.HasLocationOrType() {
		s.mu.Unlock()
		s.logger.Debug("URL rewrite skipped: no location or property type", nil)
		return false
	}

	target := searchurl.BuildURL(settled)
	if target == s.currentURL {
		s.mu.Unlock()
		return false
	}

	previous := s.currentURL
	s.stopSettleTimerLocked()
	s.latchGen++
	gen := s.latchGen
	s.state = domain.SyncWritingURL
	s.pendingURL = target
	s.currentURL = target
	s.settleTimer = s.cfg.Clock.AfterFunc(s.cfg.SettleDelay, func() { s.release(gen, "settle_timeout", true) })
	s.mu.Unlock()

	s.logger.Debug("Rewriting URL", port.Fields{"url": target})
	if err := s.cfg.Writer.WriteURL(ctx, s.cfg.SessionID, target); err != nil {
		s.logger.Error("Failed to rewrite URL", err, port.Fields{"url": target})
		s.mu.Lock()
		if gen == s.latchGen {
			s.currentURL = previous
		}
		s.mu.Unlock()
		// вызывающий сам продолжит запрос, OnIdle здесь дал бы второй
		s.release(gen, "write_failed", false)
		return false
	}
	return true
}

// Acknowledge - браузер подтвердил, что URL заменен. Снимает защелку раньше таймаута.
func (s *Synchronizer) Acknowledge(rawURL string) bool {
	s.mu.Lock()
	if s.state != domain.SyncWritingURL || !sameSearchURL(rawURL, s.pendingURL) {
		s.mu.Unlock()
		return false
	}
	gen := s.latchGen
	s.mu.Unlock()

	return s.release(gen, "acknowledged", true)
}

// HandleNavigation классифицирует событие навигации. Фильтры из URL
// после инициализации не пересчитываются никогда.
func (s *Synchronizer) HandleNavigation(rawURL string) domain.NavigationOutcome {
	s.mu.Lock()

	switch s.state {
	case domain.SyncUninitialized:
		s.mu.Unlock()
		return domain.NavigationBeforeInit
	case domain.SyncWritingURL:
		matches := sameSearchURL(rawURL, s.pendingURL)
		gen := s.latchGen
		s.mu.Unlock()
		// навигация на наш же URL - это и есть подтверждение перезаписи
		if matches {
			s.release(gen, "navigation_observed", true)
		}
		s.logger.Debug("Navigation ignored while URL rewrite in flight", port.Fields{"url": rawURL})
		return domain.NavigationSelfInflicted
	}

	s.currentURL = requestURI(rawURL)
	s.mu.Unlock()

	s.logger.Debug("External navigation observed, filters kept", port.Fields{"url": rawURL})
	return domain.NavigationExternal
}

func (s *Synchronizer) State() domain.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsWriting - поднята ли защелка "обновление вызвано нами"
func (s *Synchronizer) IsWriting() bool {
	return s.State() == domain.SyncWritingURL
}

func (s *Synchronizer) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// Stop снимает таймер; onIdle больше не вызывается.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopSettleTimerLocked()
	s.latchGen++
}

func (s *Synchronizer) release(gen uint64, reason string, notifyIdle bool) bool {
	s.mu.Lock()
	if s.stopped || s.state != domain.SyncWritingURL || gen != s.latchGen {
		s.mu.Unlock()
		return false
	}
	s.stopSettleTimerLocked()
	s.state = domain.SyncIdle
	s.pendingURL = ""
	s.mu.Unlock()

	s.logger.Debug("URL rewrite settled", port.Fields{"reason": reason})
	if notifyIdle && s.cfg.OnIdle != nil {
		s.cfg.OnIdle()
	}
	return true
}

func (s *Synchronizer) stopSettleTimerLocked() {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
}

// requestURI оставляет от URL только путь и query
func requestURI(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.RequestURI()
}

// sameSearchURL сравнивает URL по смыслу: браузер может переставить параметры
// или иначе их экранировать
func sameSearchURL(a, b string) bool {
	if b == "" {
		return false
	}
	if requestURI(a) == requestURI(b) {
		return true
	}
	return searchurl.Resolve(a).Equal(searchurl.Resolve(b))
}
