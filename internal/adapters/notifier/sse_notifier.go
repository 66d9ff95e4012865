package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

// Message - готовое к отправке SSE-сообщение
type Message struct {
	Type string
	Data []byte
}

// Closing - после этого сообщения поток клиента нужно завершить
func (m Message) Closing() bool {
	return m.Type == domain.SessionEventClosed
}

// ClientChannel - канал одного SSE-подключения (одной вкладки)
type ClientChannel chan Message

type eventWithContext struct {
	ctx   context.Context
	event domain.SessionEvent
}

const (
	eventBufferSize  = 256
	clientBufferSize = 64
)

// SSENotifier - реализация SessionNotifierPort. Рассылает события сессии
// всем ее открытым подключениям.
type SSENotifier struct {
	// ключ - ID сессии; у одной сессии может быть несколько подключений
	clients map[uuid.UUID][]ClientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	logger port.LoggerPort
}

// NewSSENotifier создает нотификатор и запускает диспетчер
func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[uuid.UUID][]ClientChannel),
		eventChan: make(chan eventWithContext, eventBufferSize),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

func (n *SSENotifier) dispatcher() {
	defer close(n.stopped)
	n.logger.Debug("Notifier dispatcher started.", nil)

	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped.", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg.ctx, pkg.event)
		}
	}
}

func (n *SSENotifier) dispatch(ctx context.Context, event domain.SessionEvent) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SSENotifier.dispatcher",
		"event_type": event.Type,
		"session_id": event.SessionID.String(),
	})

	payload, err := json.Marshal(eventPayload(event))
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}
	msg := Message{Type: event.Type, Data: payload}

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels := n.clients[event.SessionID]
	if len(channels) == 0 {
		eventLogger.Debug("No active clients for session, event dropped.", nil)
		return
	}
	for _, ch := range channels {
		select {
		case ch <- msg:
		default:
			eventLogger.Warn("Client channel is full, skipping.", nil)
		}
	}
}

// Notify ставит событие в очередь диспетчера. После Close события отбрасываются.
func (n *SSENotifier) Notify(ctx context.Context, event domain.SessionEvent) {
	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
	case <-n.done:
	}
}

// AddClient регистрирует новое SSE-подключение сессии
func (n *SSENotifier) AddClient(sessionID uuid.UUID) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, clientBufferSize)
	n.clients[sessionID] = append(n.clients[sessionID], ch)

	n.logger.Info("Client connected for session", port.Fields{
		"session_id":        sessionID.String(),
		"total_connections": len(n.clients[sessionID]),
	})
	return ch
}

// RemoveClient удаляет подключение, когда клиент отключился
func (n *SSENotifier) RemoveClient(sessionID uuid.UUID, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[sessionID]
	if !found {
		return
	}
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, sessionID)
		n.logger.Debug("Last client disconnected for session.", port.Fields{"session_id": sessionID.String()})
		return
	}
	n.clients[sessionID] = remaining
	n.logger.Info("Client disconnected for session.", port.Fields{
		"session_id":            sessionID.String(),
		"remaining_connections": len(remaining),
	})
}

// ClientCount - число подключений сессии
func (n *SSENotifier) ClientCount(sessionID uuid.UUID) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[sessionID])
}

// Close останавливает диспетчер
func (n *SSENotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.done)
		<-n.stopped
	})
}

// Format - сообщение в формате text/event-stream
func (m Message) Format() string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", m.Type, m.Data)
}
