package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain/ports/repository"
	"qwintry-bot/internal/infra/worker"
)

// UpdateHandler processes one decoded Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

type Deps struct {
	Config  *config.Config
	Updates UpdateHandler
	States  repository.StateRepository
	History repository.HistoryRepository
	Auth    *AuthManager
	// Pool is optional; nil processes updates inside the request.
	Pool   *worker.Pool
	Logger *zerolog.Logger
}

type Server struct {
	cfg     *config.Config
	updates UpdateHandler
	states  repository.StateRepository
	history repository.HistoryRepository
	auth    *AuthManager
	pool    *worker.Pool
	log     *zerolog.Logger
	server  *http.Server
}

func NewServer(d Deps) *Server {
	l := d.Logger.With().Str("component", "http").Logger()
	s := &Server{
		cfg:     d.Config,
		updates: d.Updates,
		states:  d.States,
		history: d.History,
		auth:    d.Auth,
		pool:    d.Pool,
		log:     &l,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router wires every route. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.With(Timeout(s.cfg.HTTP.RequestTimeout)).Post(s.cfg.HTTP.WebhookPath, s.handleWebhook)
	r.Get(s.cfg.HTTP.WebhookPath, s.handleWebhookProbe)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.RequireAdmin)
		r.Get("/sessions/{chatID}", s.handleGetSession)
		r.Delete("/sessions/{chatID}", s.handleDeleteSession)
		r.Delete("/history/{chatID}", s.handleDeleteHistory)
	})
	return r
}

func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.HTTP.Port).Str("webhook", s.cfg.HTTP.WebhookPath).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}
