//go:build !integration

package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	ai "qwintry-bot/internal/infra/adapters/ai"
)

func TestExtractReply_Priority(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
		want string
	}{
		{"responseText first", `{"responseText":"a","text":"b"}`, "a"},
		{"blank skipped", `{"responseText":"  ","text":"b"}`, "b"},
		{"response", `{"response":"c","message":"d"}`, "c"},
		{"message", `{"message":"d"}`, "d"},
		{"choices", `{"choices":[{"message":{"content":"e"}}]}`, "e"},
		{"last assistant turn", `{"result":{"messages":[{"is_user":false,"text":"old"},{"is_user":true,"text":"q"},{"is_user":false,"text":"new"}],"text":"f"}}`, "new"},
		{"non-string ignored", `{"text":42,"result":{"text":"f"}}`, "f"},
		{"nothing", `{"foo":"bar"}`, ""},
		{"invalid json", `not json`, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ai.ExtractReply([]byte(tc.body), ai.DefaultRules)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAbacusAdapter_RequestShape(t *testing.T) {
	t.Parallel()
	var gotQuery map[string]string
	var gotBody struct {
		Messages       []model.Turn `json:"messages"`
		ConversationID string       `json:"conversationId"`
		UserID         string       `json:"userId"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		gotQuery = map[string]string{
			"deploymentToken": r.URL.Query().Get("deploymentToken"),
			"deploymentId":    r.URL.Query().Get("deploymentId"),
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"result":{"messages":[{"is_user":true,"text":"hi"},{"is_user":false,"text":"hello"}]}}`))
	}))
	defer srv.Close()

	a, err := ai.NewAbacusAdapter(srv.URL, "dep", "tok", time.Second, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	turns := []model.Turn{{IsUser: true, Text: "hi"}}
	got, err := a.Chat(context.Background(), "77", turns)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got != "hello" {
		t.Fatalf("reply = %q", got)
	}
	if gotQuery["deploymentToken"] != "tok" || gotQuery["deploymentId"] != "dep" {
		t.Fatalf("query = %v", gotQuery)
	}
	if gotBody.ConversationID != "77" || gotBody.UserID != "77" {
		t.Fatalf("ids = %q/%q", gotBody.ConversationID, gotBody.UserID)
	}
	if len(gotBody.Messages) != 1 || !gotBody.Messages[0].IsUser || gotBody.Messages[0].Text != "hi" {
		t.Fatalf("messages = %+v", gotBody.Messages)
	}
}

func TestAbacusAdapter_Errors(t *testing.T) {
	t.Parallel()
	if _, err := ai.NewAbacusAdapter("http://x", "dep", "", time.Second, nopLogger()); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("empty token: %v", err)
	}

	status := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer status.Close()
	a, _ := ai.NewAbacusAdapter(status.URL, "dep", "tok", time.Second, nopLogger())
	if _, err := a.Chat(context.Background(), "1", nil); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("http 502: %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer empty.Close()
	a, _ = ai.NewAbacusAdapter(empty.URL, "dep", "tok", time.Second, nopLogger())
	if _, err := a.Chat(context.Background(), "1", nil); !errors.Is(err, domain.ErrEmptyReply) {
		t.Fatalf("empty: %v", err)
	}
}

func TestNewFromConfig_FallsBackAcrossBaseURLs(t *testing.T) {
	t.Parallel()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"responseText":"ответ"}`))
	}))
	defer good.Close()

	svc, err := ai.NewFromConfig(config.AIConfig{
		BaseURLs:        []string{bad.URL, good.URL},
		DeploymentID:    "dep",
		DeploymentToken: "tok",
		Timeout:         time.Second,
		ConcurrentLimit: 2,
	}, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Chat(context.Background(), "1", []model.Turn{{IsUser: true, Text: "?"}})
	if err != nil || got != "ответ" {
		t.Fatalf("got %q, %v", got, err)
	}
}
