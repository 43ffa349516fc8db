package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/infra/logging"
	"qwintry-bot/internal/infra/metrics"
)

func chatIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	return id, err == nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		metrics.IncAdminRequest("get_session", "bad_request")
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	st, err := s.states.GetState(r.Context(), chatID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		metrics.IncAdminRequest("get_session", "not_found")
		http.Error(w, "session not found", http.StatusNotFound)
		return
	case err != nil:
		metrics.IncAdminRequest("get_session", "error")
		logging.With(r.Context(), s.log).Error().Err(err).Int64("chat_id", chatID).Msg("admin: get session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncAdminRequest("get_session", "ok")
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		metrics.IncAdminRequest("delete_session", "bad_request")
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	if err := s.states.ClearState(r.Context(), chatID); err != nil {
		metrics.IncAdminRequest("delete_session", "error")
		logging.With(r.Context(), s.log).Error().Err(err).Int64("chat_id", chatID).Msg("admin: clear session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncAdminRequest("delete_session", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDParam(r)
	if !ok {
		metrics.IncAdminRequest("delete_history", "bad_request")
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}
	if err := s.history.ClearHistory(r.Context(), chatID); err != nil {
		metrics.IncAdminRequest("delete_history", "error")
		logging.With(r.Context(), s.log).Error().Err(err).Int64("chat_id", chatID).Msg("admin: clear history failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncAdminRequest("delete_history", "ok")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
