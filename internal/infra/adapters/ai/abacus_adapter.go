package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*AbacusAdapter)(nil)

const maxResponseBytes = 1 << 20

// AbacusAdapter talks to one getChatResponse endpoint of a hosted deployment.
type AbacusAdapter struct {
	endpoint     string
	deploymentID string
	token        string
	rules        []ExtractionRule
	client       *http.Client
	log          *zerolog.Logger
}

func NewAbacusAdapter(endpoint, deploymentID, token string, timeout time.Duration, logger *zerolog.Logger) (*AbacusAdapter, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: abacus deployment token", domain.ErrMissingCredentials)
	}
	if deploymentID == "" {
		return nil, fmt.Errorf("%w: abacus deployment id", domain.ErrMissingCredentials)
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("abacus endpoint: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AbacusAdapter{
		endpoint:     endpoint,
		deploymentID: deploymentID,
		token:        token,
		rules:        DefaultRules,
		client:       &http.Client{Timeout: timeout},
		log:          logger,
	}, nil
}

type abacusRequest struct {
	Messages       []model.Turn `json:"messages"`
	ConversationID string       `json:"conversationId"`
	UserID         string       `json:"userId"`
}

func (a *AbacusAdapter) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	start := time.Now()
	reply, err := a.chat(ctx, conversationID, turns)
	metrics.ObserveAICall("abacus", time.Since(start).Milliseconds(), err == nil)
	return reply, err
}

func (a *AbacusAdapter) chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	body, err := json.Marshal(abacusRequest{
		Messages:       turns,
		ConversationID: conversationID,
		UserID:         conversationID,
	})
	if err != nil {
		return "", err
	}

	u, _ := url.Parse(a.endpoint)
	q := u.Query()
	q.Set("deploymentToken", a.token)
	q.Set("deploymentId", a.deploymentID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, redactURLError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: abacus http %d: %s", domain.ErrUpstream, resp.StatusCode, snippet(raw))
	}

	reply, rule := ExtractReply(raw, a.rules)
	if reply == "" {
		a.log.Debug().Str("body", snippet(raw)).Msg("no reply field in abacus response")
		return "", domain.ErrEmptyReply
	}
	a.log.Trace().Str("rule", rule).Int("turns", len(turns)).Msg("abacus reply extracted")
	return reply, nil
}

// redactURLError drops the request URL, which carries the deployment token.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

func snippet(b []byte) string {
	const n = 300
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
