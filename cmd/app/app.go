package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/domain/ports/repository"
	aiAdapters "qwintry-bot/internal/infra/adapters/ai"
	shipAdapters "qwintry-bot/internal/infra/adapters/shipping"
	tele "qwintry-bot/internal/infra/adapters/telegram"
	httpapi "qwintry-bot/internal/infra/http"
	"qwintry-bot/internal/infra/i18n"
	"qwintry-bot/internal/infra/logging"
	"qwintry-bot/internal/infra/memory"
	red "qwintry-bot/internal/infra/redis"
	"qwintry-bot/internal/infra/sched"
	"qwintry-bot/internal/infra/worker"
	"qwintry-bot/internal/usecase"
)

// app holds everything serve needs to run and shut down.
type app struct {
	server  *httpapi.Server
	pool    *worker.Pool
	sweeper *sched.SessionSweeper
	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func newAuth(cfg *config.Config) *httpapi.AuthManager {
	return httpapi.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		// the webhook answers 500 until the credentials are provided
		logger.Error().Err(err).Msg("configuration incomplete")
	}

	// ---- Session storage ----
	var (
		states  repository.StateRepository
		history repository.HistoryRepository
		limiter tele.RateChecker
	)
	switch cfg.Session.Backend {
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		states = red.NewStateRepo(client, cfg.Session.TTL)
		history = red.NewHistoryRepo(client, cfg.Session.HistoryLimit, cfg.Session.TTL)
		limiter = red.NewRateLimiter(client)
	case "memory":
		store := memory.NewStateStore(cfg.Session.TTL)
		states = store
		history = memory.NewHistoryStore(cfg.Session.HistoryLimit)
		if cfg.Session.TTL > 0 {
			a.sweeper = sched.NewSessionSweeper(cfg.Session.SweepInterval, store, logger)
		}
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	// ---- Telegram ----
	var bot adapter.TelegramBotAdapter
	if cfg.Bot.Token != "" {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, tele.MainReplyKeyboard(tr), logger)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		logger.Info().Str("token", logging.Redact(cfg.Bot.Token, false)).Msg("telegram transport ready")
	} else {
		logger.Warn().Msg("no bot token, outbound messages are only logged")
		bot = tele.NewNoopBotAdapter(logger)
	}

	// ---- AI consultant ----
	var ai adapter.AIServiceAdapter
	if cfg.AI.DeploymentToken != "" {
		ai, err = aiAdapters.NewFromConfig(cfg.AI, logger)
		if err != nil {
			return nil, fmt.Errorf("ai: %w", err)
		}
	} else {
		logger.Warn().Msg("no abacus deployment token, AI replies are canned")
		ai = aiAdapters.NewNoopAIAdapter(logger)
	}

	// ---- Shipping ----
	calcClient, err := shipAdapters.NewCalculatorClient(cfg.Shipping, logger)
	if err != nil {
		return nil, err
	}
	var remote adapter.CatalogSource
	if cfg.Shipping.CatalogURL != "" {
		cc, err := shipAdapters.NewCatalogClient(ctx, cfg.Shipping.CatalogURL, cfg.Shipping.CatalogTTL, cfg.Shipping.Timeout, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cc.Close)
		remote = cc
	}
	maxWeight, err := decimal.NewFromString(cfg.Shipping.MaxWeight)
	if err != nil || !maxWeight.IsPositive() {
		return nil, fmt.Errorf("shipping.max_weight %q is not a positive number", cfg.Shipping.MaxWeight)
	}

	// ---- Use cases ----
	ucLog := logger.With().Str("component", "usecase").Logger()
	catalogUC := usecase.NewCatalogUseCase(cfg.Catalog, remote, cfg.Shipping.AcceptFreeTextCity, &ucLog)
	calcUC := usecase.NewCalculatorUseCase(states, catalogUC, calcClient, usecase.CalculatorSettings{
		MaxWeight: maxWeight,
		Dimensions: model.Dimensions{
			Length: cfg.Shipping.Dimensions.Length,
			Width:  cfg.Shipping.Dimensions.Width,
			Height: cfg.Shipping.Dimensions.Height,
		},
	}, &ucLog)
	consultantUC := usecase.NewConsultantUseCase(history, ai, cfg.Session.HistoryLimit, tr.T("ai_apology"), &ucLog)

	dispatcher, err := tele.NewDispatcher(tele.DispatcherDeps{
		Bot:        bot,
		Calculator: calcUC,
		Catalog:    catalogUC,
		Consultant: consultantUC,
		Translator: tr,
		Limiter:    limiter,
		RateLimit:  cfg.Bot.RateLimit,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	// ---- HTTP ----
	if cfg.HTTP.Workers > 0 {
		a.pool = worker.NewPool(cfg.HTTP.Workers, logger)
	}
	a.server = httpapi.NewServer(httpapi.Deps{
		Config:  cfg,
		Updates: dispatcher,
		States:  states,
		History: history,
		Auth:    newAuth(cfg),
		Pool:    a.pool,
		Logger:  logger,
	})

	ok = true
	return a, nil
}
