package rest

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"search-service/internal/adapters/notifier"
	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

const defaultKeepAliveInterval = 15 * time.Second

// SearchHandler - HTTP-поверхность поиска
type SearchHandler struct {
	sessions     usecases_port.SearchSessionsPort
	resolveUC    usecases_port.ResolveSearchUseCasePort
	suggestUC    usecases_port.SuggestPlacesUseCasePort
	placeDetails usecases_port.GetPlaceDetailsUseCasePort
	notifier     *notifier.SSENotifier

	keepAliveInterval time.Duration

	// закрывается при остановке сервера, SSE-потоки завершаются
	streamsDone  chan struct{}
	streamsClose sync.Once
}

func NewSearchHandler(
	sessions usecases_port.SearchSessionsPort,
	resolveUC usecases_port.ResolveSearchUseCasePort,
	suggestUC usecases_port.SuggestPlacesUseCasePort,
	placeDetails usecases_port.GetPlaceDetailsUseCasePort,
	notifier *notifier.SSENotifier,
) *SearchHandler {
	return &SearchHandler{
		sessions:          sessions,
		resolveUC:         resolveUC,
		suggestUC:         suggestUC,
		placeDetails:      placeDetails,
		notifier:          notifier,
		keepAliveInterval: defaultKeepAliveInterval,
		streamsDone:       make(chan struct{}),
	}
}

// CloseStreams завершает все открытые SSE-потоки. Повторный вызов безопасен.
func (h *SearchHandler) CloseStreams() {
	h.streamsClose.Do(func() { close(h.streamsDone) })
}

func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResolveSearch разбирает URL выдачи без создания сессии
func (h *SearchHandler) ResolveSearch(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if strings.TrimSpace(rawURL) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'url' is required")
		return
	}
	resolved := h.resolveUC.Execute(r.Context(), rawURL)
	RespondWithJSON(w, http.StatusOK, toResolveResponse(resolved))
}

func (h *SearchHandler) PlaceSuggestions(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "PlaceSuggestions"})

	list, err := h.suggestUC.Execute(r.Context(), r.URL.Query().Get("input"))
	if err != nil {
		logger.Error("Failed to fetch place suggestions", err, nil)
		WriteJSONError(w, http.StatusBadGateway, "Upstream service unavailable")
		return
	}
	RespondWithJSON(w, http.StatusOK, toSuggestionDTOs(list))
}

func (h *SearchHandler) PlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":  "PlaceDetails",
		"place_id": placeID,
	})

	details, err := h.placeDetails.Execute(r.Context(), placeID)
	if err != nil {
		status, msg := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to fetch place details", err, nil)
		}
		WriteJSONError(w, status, msg)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPlaceDetailsDTO(*details))
}

// SubscribeToSession - SSE-поток событий сессии
func (h *SearchHandler) SubscribeToSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	handlerLogger := sessionLogger(r, "SubscribeToSession", id)

	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		status, msg := statusFromError(err)
		WriteJSONError(w, status, msg)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.notifier.AddClient(id)
	defer h.notifier.RemoveClient(id, clientChan)

	handlerLogger.Info("New client subscribed to session events", nil)
	fmt.Fprintf(w, "event: connected\ndata: {\"sessionId\":%q}\n\n", id.String())
	flusher.Flush()

	ticker := time.NewTicker(h.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-clientChan:
			if _, err := fmt.Fprint(w, msg.Format()); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()
			if msg.Closing() {
				handlerLogger.Info("Session closed, ending SSE stream.", nil)
				return
			}

		case <-ticker.C:
			// строки с двоеточия - комментарии SSE, браузер их игнорирует
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-h.streamsDone:
			fmt.Fprint(w, notifier.Message{Type: domain.SessionEventClosed, Data: []byte("{}")}.Format())
			flusher.Flush()
			handlerLogger.Info("Server shutting down, ending SSE stream.", nil)
			return

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected.", nil)
			return
		}
	}
}
