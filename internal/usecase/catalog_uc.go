// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase turns free text and callback ids into catalog records.
type CatalogUseCase interface {
	Warehouses() []model.Warehouse
	ResolveWarehouse(input string) (*model.Warehouse, error)
	ResolveCountry(ctx context.Context, input string) (*model.Country, error)
	ResolveCity(ctx context.Context, countryID, input string) (*model.City, error)
	CountryByID(ctx context.Context, id string) (*model.Country, error)
	CityByID(ctx context.Context, countryID, id string) (*model.City, error)
	SuggestCountries(n int) []model.Country
	SuggestCities(countryID string, n int) []model.City
}

type countryRecord struct {
	country model.Country
	keys    []string
	cities  []cityRecord
}

type cityRecord struct {
	city model.City
	keys []string
}

type catalogUC struct {
	warehouses []model.Warehouse
	whKeys     [][]string
	countries  []countryRecord
	remote     adapter.CatalogSource // optional
	freeText   bool
	log        *zerolog.Logger
}

// NewCatalogUseCase indexes the configured table. remote may be nil.
func NewCatalogUseCase(cfg config.CatalogConfig, remote adapter.CatalogSource, acceptFreeTextCity bool, logger *zerolog.Logger) *catalogUC {
	uc := &catalogUC{remote: remote, freeText: acceptFreeTextCity, log: logger}
	for i, w := range cfg.Warehouses {
		uc.warehouses = append(uc.warehouses, model.Warehouse{
			Index:  i + 1,
			Code:   strings.ToUpper(w.Code),
			Hub:    w.Hub,
			Name:   w.Name,
			Tariff: w.Tariff,
		})
		keys := []string{normalizeKey(w.Code), normalizeKey(w.Name)}
		for _, a := range w.Aliases {
			keys = append(keys, normalizeKey(a))
		}
		uc.whKeys = append(uc.whKeys, keys)
	}
	for _, c := range cfg.Countries {
		rec := countryRecord{
			country: model.Country{ID: strings.ToUpper(c.ID), Name: c.Name},
			keys:    []string{normalizeKey(c.ID), normalizeKey(c.Name)},
		}
		for _, a := range c.Aliases {
			rec.keys = append(rec.keys, normalizeKey(a))
		}
		for _, ct := range c.Cities {
			cr := cityRecord{
				city: model.City{ID: ct.ID, Name: ct.Name, CountryID: rec.country.ID},
				keys: []string{normalizeKey(ct.ID), normalizeKey(ct.Name)},
			}
			for _, a := range ct.Aliases {
				cr.keys = append(cr.keys, normalizeKey(a))
			}
			rec.cities = append(rec.cities, cr)
		}
		uc.countries = append(uc.countries, rec)
	}
	return uc
}

func (c *catalogUC) Warehouses() []model.Warehouse {
	out := make([]model.Warehouse, len(c.warehouses))
	copy(out, c.warehouses)
	return out
}

// ResolveWarehouse accepts the 1-based index, the code or any alias.
func (c *catalogUC) ResolveWarehouse(input string) (*model.Warehouse, error) {
	key := normalizeKey(input)
	if key == "" {
		return nil, domain.ErrUnknownWarehouse
	}
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= len(c.warehouses) {
			w := c.warehouses[n-1]
			return &w, nil
		}
		return nil, domain.ErrUnknownWarehouse
	}
	for i, keys := range c.whKeys {
		if containsKey(keys, key) {
			w := c.warehouses[i]
			return &w, nil
		}
	}
	return nil, domain.ErrUnknownWarehouse
}

func (c *catalogUC) ResolveCountry(ctx context.Context, input string) (*model.Country, error) {
	key := normalizeKey(input)
	if key == "" {
		return nil, domain.ErrUnknownCountry
	}
	for _, rec := range c.countries {
		if containsKey(rec.keys, key) {
			ct := rec.country
			return &ct, nil
		}
	}
	if c.remote == nil {
		return nil, domain.ErrUnknownCountry
	}
	list, err := c.remote.Countries(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("remote country lookup failed")
		return nil, domain.ErrUnknownCountry
	}
	for _, ct := range list {
		if normalizeKey(ct.ID) == key || normalizeKey(ct.Name) == key {
			found := ct
			return &found, nil
		}
	}
	return nil, domain.ErrUnknownCountry
}

func (c *catalogUC) ResolveCity(ctx context.Context, countryID, input string) (*model.City, error) {
	key := normalizeKey(input)
	if key == "" {
		return nil, domain.ErrUnknownCity
	}
	if rec := c.country(countryID); rec != nil {
		for _, cr := range rec.cities {
			if containsKey(cr.keys, key) {
				ct := cr.city
				return &ct, nil
			}
		}
	}
	if c.remote != nil {
		list, err := c.remote.Cities(ctx, countryID)
		if err != nil {
			c.log.Warn().Err(err).Str("country", countryID).Msg("remote city lookup failed")
		}
		for _, ct := range list {
			if normalizeKey(ct.ID) == key || normalizeKey(ct.Name) == key {
				found := ct
				if found.CountryID == "" {
					found.CountryID = countryID
				}
				return &found, nil
			}
		}
	}
	if c.freeText && letterCount(input) >= 2 {
		name := strings.TrimSpace(input)
		return &model.City{ID: name, Name: name, CountryID: countryID}, nil
	}
	return nil, domain.ErrUnknownCity
}

func (c *catalogUC) CountryByID(ctx context.Context, id string) (*model.Country, error) {
	if rec := c.country(id); rec != nil {
		ct := rec.country
		return &ct, nil
	}
	if c.remote != nil {
		list, err := c.remote.Countries(ctx)
		if err == nil {
			for _, ct := range list {
				if strings.EqualFold(ct.ID, id) {
					found := ct
					return &found, nil
				}
			}
		}
	}
	return nil, domain.ErrUnknownCountry
}

func (c *catalogUC) CityByID(ctx context.Context, countryID, id string) (*model.City, error) {
	if rec := c.country(countryID); rec != nil {
		for _, cr := range rec.cities {
			if cr.city.ID == id {
				ct := cr.city
				return &ct, nil
			}
		}
	}
	if c.remote != nil {
		list, err := c.remote.Cities(ctx, countryID)
		if err == nil {
			for _, ct := range list {
				if ct.ID == id {
					found := ct
					found.CountryID = countryID
					return &found, nil
				}
			}
		}
	}
	return nil, domain.ErrUnknownCity
}

func (c *catalogUC) SuggestCountries(n int) []model.Country {
	out := make([]model.Country, 0, n)
	for _, rec := range c.countries {
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, rec.country)
	}
	return out
}

func (c *catalogUC) SuggestCities(countryID string, n int) []model.City {
	rec := c.country(countryID)
	if rec == nil {
		return nil
	}
	out := make([]model.City, 0, n)
	for _, cr := range rec.cities {
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, cr.city)
	}
	return out
}

func (c *catalogUC) country(id string) *countryRecord {
	for i := range c.countries {
		if strings.EqualFold(c.countries[i].country.ID, id) {
			return &c.countries[i]
		}
	}
	return nil
}

// normalizeKey lower-cases, folds ё to е, drops emoji and punctuation at the
// edges and collapses inner whitespace.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ё", "е")
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
