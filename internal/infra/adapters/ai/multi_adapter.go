// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*FallbackAIAdapter)(nil)

// Node is one endpoint in fallback order.
type Node struct {
	Name    string
	Adapter adapter.AIServiceAdapter
}

// FallbackAIAdapter tries each node once, in order, and returns the first success.
type FallbackAIAdapter struct {
	nodes []Node
	log   *zerolog.Logger
}

func NewFallbackAIAdapter(nodes []Node, logger *zerolog.Logger) *FallbackAIAdapter {
	kept := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Adapter != nil {
			kept = append(kept, n)
		}
	}
	return &FallbackAIAdapter{nodes: kept, log: logger}
}

func (m *FallbackAIAdapter) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	if len(m.nodes) == 0 {
		return "", fmt.Errorf("%w: no ai endpoints configured", domain.ErrUpstream)
	}

	var failures []string
	allEmpty := true
	for i, node := range m.nodes {
		reply, err := node.Adapter.Chat(ctx, conversationID, turns)
		if err == nil {
			if i > 0 {
				m.log.Warn().Str("endpoint", node.Name).Int("position", i+1).Msg("ai fallback recovered")
			}
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, domain.ErrEmptyReply) {
			allEmpty = false
		}
		failures = append(failures, fmt.Sprintf("%s: %v", node.Name, err))
		m.log.Warn().Err(err).Str("endpoint", node.Name).Msg("ai endpoint failed, trying next")
	}

	if allEmpty {
		return "", domain.ErrEmptyReply
	}
	return "", fmt.Errorf("%w: all ai endpoints failed: %s", domain.ErrUpstream, strings.Join(failures, " | "))
}
