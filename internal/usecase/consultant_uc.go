// File: internal/usecase/consultant_uc.go
package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/domain/ports/repository"
	"qwintry-bot/internal/infra/metrics"
)

// Compile-time check
var _ ConsultantUseCase = (*consultantUC)(nil)

type ConsultantUseCase interface {
	// Ask always returns text to show. On failure it is the apology and err
	// carries the cause for logging.
	Ask(ctx context.Context, chatID int64, question string) (string, error)
	ClearHistory(ctx context.Context, chatID int64) error
}

type consultantUC struct {
	history repository.HistoryRepository
	ai      adapter.AIServiceAdapter
	limit   int
	apology string
	log     *zerolog.Logger
}

func NewConsultantUseCase(history repository.HistoryRepository, ai adapter.AIServiceAdapter, limit int, apology string, logger *zerolog.Logger) *consultantUC {
	return &consultantUC{history: history, ai: ai, limit: limit, apology: apology, log: logger}
}

func (c *consultantUC) Ask(ctx context.Context, chatID int64, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		metrics.IncAIReply("empty")
		return c.apology, domain.ErrEmptyReply
	}

	turns, err := c.history.GetHistory(ctx, chatID)
	if err != nil {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("history unavailable, asking without it")
		turns = nil
	}
	turns = model.TrimTurns(append(turns, model.Turn{IsUser: true, Text: question}), c.limit)

	id := strconv.FormatInt(chatID, 10)
	reply, askErr := c.ai.Chat(ctx, id, turns)
	reply = strings.TrimSpace(reply)
	if askErr == nil && reply == "" {
		askErr = domain.ErrEmptyReply
	}
	if askErr == nil {
		turns = model.TrimTurns(append(turns, model.Turn{IsUser: false, Text: reply}), c.limit)
	}

	if err := c.history.SaveHistory(ctx, chatID, turns); err != nil {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to save history")
	}

	if askErr != nil {
		if errors.Is(askErr, domain.ErrEmptyReply) {
			metrics.IncAIReply("empty")
		} else {
			metrics.IncAIReply("error")
		}
		return c.apology, askErr
	}
	metrics.IncAIReply("ok")
	return reply, nil
}

func (c *consultantUC) ClearHistory(ctx context.Context, chatID int64) error {
	return c.history.ClearHistory(ctx, chatID)
}
