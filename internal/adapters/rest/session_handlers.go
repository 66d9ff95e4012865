package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// sessionLogger - логгер хендлера с session_id
func sessionLogger(r *http.Request, handler string, sessionID uuid.UUID) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    handler,
		"session_id": sessionID.String(),
	})
}

// respondSession отдает снимок сессии или ошибку ядра
func respondSession(w http.ResponseWriter, logger port.LoggerPort, view domain.SessionView, err error, okStatus int) {
	if err != nil {
		status, msg := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Session operation failed", err, nil)
		} else {
			logger.Warn("Session operation rejected", port.Fields{"error": err.Error()})
		}
		WriteJSONError(w, status, msg)
		return
	}
	RespondWithJSON(w, okStatus, toSessionResponse(view))
}

func (h *SearchHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateSession"})

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode create session request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'url' is required")
		return
	}

	view, err := h.sessions.Create(r.Context(), req.URL)
	if err == nil {
		logger.Info("Search session created", port.Fields{"session_id": view.ID.String(), "url": view.URL})
	}
	respondSession(w, logger, view, err, http.StatusCreated)
}

func (h *SearchHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.Get(r.Context(), id)
	respondSession(w, sessionLogger(r, "GetSession", id), view, err, http.StatusOK)
}

func (h *SearchHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	logger := sessionLogger(r, "CloseSession", id)
	if err := h.sessions.Close(r.Context(), id); err != nil {
		status, msg := statusFromError(err)
		logger.Warn("Failed to close session", port.Fields{"error": err.Error()})
		WriteJSONError(w, status, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFilters принимает {"поле": значение|null}; null сбрасывает поле
func (h *SearchHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	logger := sessionLogger(r, "UpdateFilters", id)

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logger.Warn("Failed to decode filters body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "At least one filter is required")
		return
	}

	values := make(map[string]string, len(body))
	for key, raw := range body {
		v, err := filterValue(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "Invalid value for '"+key+"'")
			return
		}
		values[key] = v
	}

	view, err := h.sessions.UpdateFilters(r.Context(), id, values)
	respondSession(w, logger, view, err, http.StatusOK)
}

func (h *SearchHandler) RemoveFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.RemoveFilter(r.Context(), id, chi.URLParam(r, "key"))
	respondSession(w, sessionLogger(r, "RemoveFilter", id), view, err, http.StatusOK)
}

func (h *SearchHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	view, err := h.sessions.ClearFilters(r.Context(), id)
	respondSession(w, sessionLogger(r, "ClearFilters", id), view, err, http.StatusOK)
}

func (h *SearchHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req SetPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.sessions.SetPage(r.Context(), id, req.Page)
	respondSession(w, sessionLogger(r, "SetPage", id), view, err, http.StatusOK)
}

func (h *SearchHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req SetSortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.sessions.SetSort(r.Context(), id, req.SortBy, req.SortOrder)
	respondSession(w, sessionLogger(r, "SetSort", id), view, err, http.StatusOK)
}

func (h *SearchHandler) EditLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req EditLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view, err := h.sessions.EditLocation(r.Context(), id, req.Text)
	respondSession(w, sessionLogger(r, "EditLocation", id), view, err, http.StatusOK)
}

func (h *SearchHandler) SelectPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req SelectPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PlaceID) == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'place_id' is required")
		return
	}
	view, err := h.sessions.SelectPlace(r.Context(), id, req.PlaceID)
	respondSession(w, sessionLogger(r, "SelectPlace", id), view, err, http.StatusOK)
}

func (h *SearchHandler) SessionSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	logger := sessionLogger(r, "SessionSuggestions", id)

	list, err := h.sessions.Suggest(r.Context(), id, r.URL.Query().Get("input"))
	if err != nil {
		status, msg := statusFromError(err)
		logger.Warn("Failed to fetch suggestions", port.Fields{"error": err.Error()})
		WriteJSONError(w, status, msg)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSuggestionDTOs(list))
}

// HandleNavigation - браузер сообщил о навигации (назад/вперед, ручной ввод)
func (h *SearchHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'url' is required")
		return
	}

	outcome, err := h.sessions.HandleNavigation(r.Context(), id, req.URL)
	if err != nil {
		status, msg := statusFromError(err)
		WriteJSONError(w, status, msg)
		return
	}
	sessionLogger(r, "HandleNavigation", id).Debug("Navigation classified", port.Fields{"outcome": outcome.String()})
	RespondWithJSON(w, http.StatusOK, NavigationResponse{Outcome: outcome.String()})
}

// AcknowledgeNavigation - браузер подтвердил замену URL после события "navigate"
func (h *SearchHandler) AcknowledgeNavigation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseSessionID(w, r)
	if !ok {
		return
	}
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		WriteJSONError(w, http.StatusBadRequest, "Field 'url' is required")
		return
	}

	released, err := h.sessions.AcknowledgeNavigation(r.Context(), id, req.URL)
	if err != nil {
		status, msg := statusFromError(err)
		WriteJSONError(w, status, msg)
		return
	}
	RespondWithJSON(w, http.StatusOK, AcknowledgeResponse{Released: released})
}

func (h *SearchHandler) parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := sessionIDFromRequest(r)
	if err != nil {
		contextkeys.LoggerFromContext(r.Context()).Warn("Invalid session id", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
