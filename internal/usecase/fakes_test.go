//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"qwintry-bot/internal/domain/model"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeShipping records every request and answers with a fixed quote.
type fakeShipping struct {
	mu    sync.Mutex
	calls []model.ShipmentRequest
	quote *model.Quote
	err   error
}

func (f *fakeShipping) Calculate(ctx context.Context, req model.ShipmentRequest) (*model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.quote
	cp.Tariffs = append([]model.Tariff(nil), f.quote.Tariffs...)
	return &cp, nil
}

func threeTariffs() *model.Quote {
	return &model.Quote{Tariffs: []model.Tariff{
		{Key: "qwintry_flash", Label: "Flash", Price: decimal.RequireFromString("42.10"), Currency: "USD", Days: "7-10"},
		{Key: "qwintry_ecopost", Label: "EcoPost", Price: decimal.RequireFromString("19.99"), Currency: "USD", Days: "14-21"},
		{Key: "qwintry_smart", Label: "Smart", Price: decimal.RequireFromString("30"), Currency: "USD", Days: "10-14"},
	}}
}

type fakeCatalogSource struct {
	countries []model.Country
	cities    map[string][]model.City
	calls     int
}

func (f *fakeCatalogSource) Countries(ctx context.Context) ([]model.Country, error) {
	f.calls++
	return f.countries, nil
}

func (f *fakeCatalogSource) Cities(ctx context.Context, countryID string) ([]model.City, error) {
	f.calls++
	if c, ok := f.cities[countryID]; ok {
		return c, nil
	}
	return nil, errors.New("no cities")
}

// fakeAI returns replies in order and records the turns it was sent.
type fakeAI struct {
	replies []string
	errs    []error
	seen    [][]model.Turn
	ids     []string
}

func (f *fakeAI) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	i := len(f.seen)
	f.seen = append(f.seen, append([]model.Turn(nil), turns...))
	f.ids = append(f.ids, conversationID)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "ok", nil
}

type failingHistory struct{}

func (failingHistory) GetHistory(ctx context.Context, chatID int64) ([]model.Turn, error) {
	return nil, errors.New("redis down")
}
func (failingHistory) SaveHistory(ctx context.Context, chatID int64, turns []model.Turn) error {
	return errors.New("redis down")
}
func (failingHistory) ClearHistory(ctx context.Context, chatID int64) error { return nil }
