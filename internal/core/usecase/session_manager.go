package usecase

import (
	"context"
	"sync"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

// SessionManager хранит открытые поисковые сессии и закрывает простаивающие.
type SessionManager struct {
	deps SessionDeps
	opts SessionOptions
	ttl  time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*SearchSession
}

func NewSessionManager(deps SessionDeps, opts SessionOptions, ttl time.Duration) *SessionManager {
	if deps.Logger == nil {
		deps.Logger = contextkeys.NoopLogger()
	}
	return &SessionManager{
		deps:     deps,
		opts:     opts,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*SearchSession),
	}
}

func (m *SessionManager) Create(ctx context.Context, rawURL string) (domain.SessionView, error) {
	logger := contextkeys.LoggerFromContext(ctx)

	session := NewSearchSession(m.deps, m.opts)

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	session.Mount(rawURL)

	logger.Info("Search session created", port.Fields{
		"session_id": session.ID().String(),
		"url":        rawURL,
	})
	return session.View(), nil
}

func (m *SessionManager) Get(_ context.Context, sessionID uuid.UUID) (domain.SessionView, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

func (m *SessionManager) Close(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Close()

	contextkeys.LoggerFromContext(ctx).Info("Search session closed by client", port.Fields{
		"session_id": sessionID.String(),
	})
	return nil
}

func (m *SessionManager) UpdateFilters(_ context.Context, sessionID uuid.UUID, values map[string]string) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.UpdateFilters(values)
		return err
	})
}

func (m *SessionManager) RemoveFilter(_ context.Context, sessionID uuid.UUID, key string) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.RemoveFilter(key)
		return err
	})
}

func (m *SessionManager) ClearFilters(_ context.Context, sessionID uuid.UUID) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.ClearFilters()
		return err
	})
}

func (m *SessionManager) SetPage(_ context.Context, sessionID uuid.UUID, page int) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.SetPage(page)
		return err
	})
}

func (m *SessionManager) SetSort(_ context.Context, sessionID uuid.UUID, by, order string) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.SetSort(by, order)
		return err
	})
}

func (m *SessionManager) EditLocation(_ context.Context, sessionID uuid.UUID, text string) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.EditLocation(text)
		return err
	})
}

func (m *SessionManager) SelectPlace(ctx context.Context, sessionID uuid.UUID, placeID string) (domain.SessionView, error) {
	return m.apply(sessionID, func(s *SearchSession) error {
		_, err := s.SelectPlace(ctx, placeID)
		return err
	})
}

func (m *SessionManager) Suggest(ctx context.Context, sessionID uuid.UUID, input string) ([]domain.PlaceSuggestion, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Suggest(ctx, input)
}

func (m *SessionManager) HandleNavigation(_ context.Context, sessionID uuid.UUID, rawURL string) (domain.NavigationOutcome, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return domain.NavigationBeforeInit, err
	}
	return session.HandleNavigation(rawURL), nil
}

func (m *SessionManager) AcknowledgeNavigation(_ context.Context, sessionID uuid.UUID, rawURL string) (bool, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return false, err
	}
	return session.AcknowledgeNavigation(rawURL), nil
}

// Count - число открытых сессий
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle закрывает сессии без активности дольше ttl. Возвращает число закрытых.
func (m *SessionManager) ExpireIdle(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}

	var expired []*SearchSession
	m.mu.Lock()
	for id, session := range m.sessions {
		if now.Sub(session.LastActivity()) > m.ttl {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	if len(expired) > 0 {
		m.deps.Logger.Info("Idle search sessions expired", port.Fields{"count": len(expired)})
	}
	return len(expired)
}

// RunJanitor периодически закрывает простаивающие сессии, пока не отменен ctx.
func (m *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ExpireIdle(m.clockNow())
		}
	}
}

// CloseAll закрывает все сессии (остановка сервиса)
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*SearchSession)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	m.deps.Logger.Info("All search sessions closed", port.Fields{"count": len(sessions)})
}

func (m *SessionManager) apply(sessionID uuid.UUID, op func(s *SearchSession) error) (domain.SessionView, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if err := op(session); err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

func (m *SessionManager) session(sessionID uuid.UUID) (*SearchSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) clockNow() time.Time {
	if m.deps.Clock != nil {
		return m.deps.Clock.Now()
	}
	return time.Now()
}
