//go:build !integration

package i18n

import (
	"io/fs"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTranslator(t *testing.T) {
	contentBytes := []byte("greeting: Привет\nwelcome_user: Привет, %s")

	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "Привет"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "Олег")
		want := "Привет, Олег"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedLocalesShareKeys(t *testing.T) {
	load := func(lang string) map[string]string {
		t.Helper()
		data, err := fs.ReadFile(LocalesFS, "locales/"+lang+".yaml")
		if err != nil {
			t.Fatalf("read %s: %v", lang, err)
		}
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", lang, err)
		}
		return m
	}
	ru, en := load("ru"), load("en")
	for k := range ru {
		if _, ok := en[k]; !ok {
			t.Errorf("key %q missing in en", k)
		}
	}
	for k := range en {
		if _, ok := ru[k]; !ok {
			t.Errorf("key %q missing in ru", k)
		}
	}
}

func TestNewTranslatorUnknownLanguage(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "xx"); err == nil {
		t.Fatal("expected error for missing locale")
	}
	tr, err := NewTranslator(LocalesFS, "ru")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	if tr.Lang() != "ru" || !tr.Has("ai_apology") {
		t.Fatalf("unexpected translator state: lang=%q", tr.Lang())
	}
}
