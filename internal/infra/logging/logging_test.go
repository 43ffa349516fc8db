//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"qwintry-bot/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithChatID(WithTraceID(context.Background(), "abc-123"), 42)
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if line["trace_id"] != "abc-123" {
		t.Errorf("trace_id = %v", line["trace_id"])
	}
	if line["chat_id"] != float64(42) {
		t.Errorf("chat_id = %v", line["chat_id"])
	}
	if TraceID(ctx) != "abc-123" {
		t.Errorf("TraceID() = %q", TraceID(ctx))
	}
}

func TestLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "nonsense", Format: "json"}, false)
	l.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at default level: %q", buf.String())
	}
	l.Info().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("info not written")
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		name string
		in   string
		dev  bool
		want string
	}{
		{"dev keeps value", "123456:ABCDEFGHIJ", true, "123456:ABCDEFGHIJ"},
		{"short", "secret", false, "***"},
		{"token", "123456:ABCDEFGHIJ", false, "1234...IJ"},
		{"cyrillic", "сколько стоит доставка", false, "скол...ка"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Redact(tc.in, tc.dev); got != tc.want {
				t.Fatalf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
