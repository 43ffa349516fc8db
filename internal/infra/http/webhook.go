package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"qwintry-bot/internal/infra/logging"
)

const (
	secretHeader   = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBytes = 1 << 20
)

// handleWebhook acknowledges every well-authenticated update with 200 so
// Telegram never retries; processing failures are only logged.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	if secret := s.cfg.Bot.WebhookSecret; secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Warn().Msg("webhook secret mismatch")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}
	if err := s.cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("webhook called with incomplete configuration")
		http.Error(w, "configuration error", http.StatusInternalServerError)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("undecodable update ignored")
		writeOK(w)
		return
	}

	if s.pool != nil {
		traceID := logging.TraceID(r.Context())
		err := s.pool.Submit(func(ctx context.Context) error {
			return s.updates.HandleUpdate(logging.WithTraceID(ctx, traceID), update)
		})
		if err == nil {
			writeOK(w)
			return
		}
		log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("processing update inline")
	}

	s.handleInline(r.Context(), log, update)
	writeOK(w)
}

// handleInline runs the dispatcher in the request goroutine. A panic is
// logged and swallowed so the update is still acknowledged.
func (s *Server) handleInline(ctx context.Context, log *zerolog.Logger, update tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Int("update_id", update.UpdateID).
				Bytes("stack", debug.Stack()).Msg("update handling panicked")
		}
	}()
	if err := s.updates.HandleUpdate(ctx, update); err != nil {
		log.Error().Err(err).Int("update_id", update.UpdateID).Msg("update handling failed")
	}
}

func (s *Server) handleWebhookProbe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK: use POST")
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
