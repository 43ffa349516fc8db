package ai

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain/ports/adapter"
)

// NewFromConfig builds one Abacus node per base URL, chained in configured
// order and capped by cfg.ConcurrentLimit.
func NewFromConfig(cfg config.AIConfig, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	l := logger.With().Str("component", "ai").Logger()
	nodes := make([]Node, 0, len(cfg.BaseURLs))
	for _, base := range cfg.BaseURLs {
		a, err := NewAbacusAdapter(base, cfg.DeploymentID, cfg.DeploymentToken, cfg.Timeout, &l)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{Name: hostOf(base), Adapter: a})
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("ai: no base urls")
	}
	return NewLimitedAI(NewFallbackAIAdapter(nodes, &l), cfg.ConcurrentLimit), nil
}

func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
