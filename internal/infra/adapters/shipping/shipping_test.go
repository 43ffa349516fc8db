//go:build !integration

package shipping_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/infra/adapters/shipping"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

const sampleCosts = `{
  "costs": {
    "qwintry_flash": {"cost": {"label": "Qwintry Flash", "totalCost": "42.10", "shippingCost": "40", "currency": "$"}, "days": "7-10"},
    "qwintry_smart": {"cost": {"label": "Qwintry Smart", "shippingCost": 30, "currency": "$"}, "delivery_days": "10-14"},
    "broken":        {"cost": {"label": "No price"}}
  },
  "country_info": {"customs_limit": "200 EUR"}
}`

func TestParseQuote(t *testing.T) {
	t.Parallel()
	q, err := shipping.ParseQuote([]byte(sampleCosts))
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Tariffs) != 2 {
		t.Fatalf("tariffs = %d, want 2", len(q.Tariffs))
	}
	q.SortByPrice()
	if q.Tariffs[0].Key != "qwintry_smart" || q.Tariffs[0].Price.String() != "30" || q.Tariffs[0].Days != "10-14" {
		t.Fatalf("first = %+v", q.Tariffs[0])
	}
	if q.Tariffs[1].Label != "Qwintry Flash" || q.Tariffs[1].Price.String() != "42.1" {
		t.Fatalf("second = %+v", q.Tariffs[1])
	}
	if q.CustomsLimit != "200 EUR" {
		t.Fatalf("customs = %q", q.CustomsLimit)
	}

	if _, err := shipping.ParseQuote([]byte("<html>")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestCalculatorClient_RequestAndFallback(t *testing.T) {
	t.Parallel()
	var badHits int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&badHits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	var got map[string]any
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(sampleCosts))
	}))
	defer good.Close()

	c, err := shipping.NewCalculatorClient(config.ShippingConfig{
		BaseURLs: []string{bad.URL, good.URL},
		Timeout:  time.Second,
		RPS:      100,
	}, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	q, err := c.Calculate(context.Background(), model.ShipmentRequest{
		Hub: "US1", CountryID: "RU", CityID: "4050", Weight: "2.5",
		Dimensions: model.Dimensions{Length: "10", Width: "10", Height: "10"},
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(q.Tariffs) != 2 {
		t.Fatalf("tariffs = %d", len(q.Tariffs))
	}
	if atomic.LoadInt32(&badHits) != 1 {
		t.Fatalf("bad base hit %d times", badHits)
	}
	want := map[string]any{
		"hubShortName": "US1", "countryId": "RU", "cityId": "4050", "weight": "2.5",
		"weightMeasurement": "kg", "dimensionsMeasurement": "cm", "insurance": false,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	dims, _ := got["dimensions"].(map[string]any)
	if dims["length"] != "10" || dims["width"] != "10" || dims["height"] != "10" {
		t.Errorf("dimensions = %v", dims)
	}
}

func TestCalculatorClient_EmptyTable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"costs":{}}`))
	}))
	defer srv.Close()
	c, _ := shipping.NewCalculatorClient(config.ShippingConfig{BaseURLs: []string{srv.URL}}, nopLogger())
	_, err := c.Calculate(context.Background(), model.ShipmentRequest{Hub: "US1"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
}

func TestCatalogClient_CachesResponses(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/countries":
			_, _ = w.Write([]byte(`[{"id":"RU","name":"Россия"},{"id":"","name":"skip"}]`))
		case "/cities":
			if r.URL.Query().Get("country") != "RU" {
				t.Errorf("country = %q", r.URL.Query().Get("country"))
			}
			_, _ = w.Write([]byte(`{"cities":[{"value":"4050","label":"Москва"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := shipping.NewCatalogClient(context.Background(), srv.URL, time.Minute, time.Second, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for i := 0; i < 2; i++ {
		cs, err := c.Countries(context.Background())
		if err != nil || len(cs) != 1 || cs[0].ID != "RU" {
			t.Fatalf("countries = %+v, %v", cs, err)
		}
		cities, err := c.Cities(context.Background(), "RU")
		if err != nil || len(cities) != 1 || cities[0].ID != "4050" || cities[0].CountryID != "RU" {
			t.Fatalf("cities = %+v, %v", cities, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("upstream hits = %d, want 2", n)
	}
}
