package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/metrics"
)

var _ adapter.CatalogSource = (*CatalogClient)(nil)

// CatalogClient fetches country and city lists from the provider and keeps
// them in a bigcache for ttl.
type CatalogClient struct {
	base   string
	client *http.Client
	cache  *bigcache.BigCache
	log    *zerolog.Logger
}

func NewCatalogClient(ctx context.Context, baseURL string, ttl, timeout time.Duration, logger *zerolog.Logger) (*CatalogClient, error) {
	if baseURL == "" {
		return nil, errors.New("catalog: empty base url")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cache, err := bigcache.New(ctx, cacheConfig(ttl))
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	l := logger.With().Str("component", "catalog").Logger()
	return &CatalogClient{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		log:    &l,
	}, nil
}

// cacheConfig keeps entries for ttl. bigcache evicts only when it cleans, so
// the clean window is kept small relative to ttl.
func cacheConfig(ttl time.Duration) bigcache.Config {
	return bigcache.Config{
		Shards:             16,
		LifeWindow:         ttl,
		CleanWindow:        ttl / 10,
		MaxEntriesInWindow: 1024,
		MaxEntrySize:       4096,
		HardMaxCacheSize:   8, // MB
	}
}

func (c *CatalogClient) Close() error { return c.cache.Close() }

func (c *CatalogClient) Countries(ctx context.Context) ([]model.Country, error) {
	const key = "countries"
	var out []model.Country
	if c.cached(key, &out) {
		return out, nil
	}
	items, err := c.fetch(ctx, c.base+"/countries", "countries")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out = append(out, model.Country{ID: it.id, Name: it.name})
	}
	c.store(key, out)
	return out, nil
}

func (c *CatalogClient) Cities(ctx context.Context, countryID string) ([]model.City, error) {
	key := "cities:" + countryID
	var out []model.City
	if c.cached(key, &out) {
		return out, nil
	}
	u := c.base + "/cities?country=" + url.QueryEscape(countryID)
	items, err := c.fetch(ctx, u, "cities")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out = append(out, model.City{ID: it.id, Name: it.name, CountryID: countryID})
	}
	c.store(key, out)
	return out, nil
}

func (c *CatalogClient) cached(key string, dst any) bool {
	b, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		metrics.IncCacheRequest("catalog", "miss")
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		metrics.IncCacheRequest("catalog", "miss")
		return false
	}
	metrics.IncCacheRequest("catalog", "hit")
	return true
}

func (c *CatalogClient) store(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, b); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

type entry struct{ id, name string }

// fetch accepts either a bare array or an object wrapping it under field.
func (c *CatalogClient) fetch(ctx context.Context, u, field string) ([]entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: catalog http %d", domain.ErrUpstream, resp.StatusCode)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: catalog malformed json", domain.ErrUpstream)
	}
	doc := gjson.ParseBytes(raw)
	list := doc
	if !doc.IsArray() {
		list = first(doc, field, "data", "items")
	}

	var out []entry
	for _, it := range list.Array() {
		id := strings.TrimSpace(first(it, "id", "value", "code").String())
		name := strings.TrimSpace(first(it, "name", "label", "title").String())
		if id == "" || name == "" {
			continue
		}
		out = append(out, entry{id: id, name: name})
	}
	return out, nil
}
