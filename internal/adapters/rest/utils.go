package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"search-service/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusFromError сопоставляет доменные ошибки HTTP-статусам
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "Search session not found"
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone, "Search session is closed"
	case errors.Is(err, domain.ErrPlaceNotFound):
		return http.StatusNotFound, "Place not found"
	case errors.Is(err, domain.ErrUnknownFilter), errors.Is(err, domain.ErrInvalidPage):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusBadGateway, "Upstream service unavailable"
}

func sessionIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id %q", raw)
	}
	return id, nil
}

// filterValue приводит JSON-значение к строке фильтра; null сбрасывает поле
func filterValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
