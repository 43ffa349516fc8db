package config

import (
	"errors"
	"fmt"
	"strings"
)

// CatalogConfig is the single reference table for warehouses and destinations.
type CatalogConfig struct {
	Warehouses []WarehouseEntry `yaml:"warehouses"`
	Countries  []CountryEntry   `yaml:"countries"`
}

type WarehouseEntry struct {
	Code    string   `yaml:"code"`
	Hub     string   `yaml:"hub"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	// Tariff, when set, restricts quotes from this hub to a single tariff key.
	Tariff string `yaml:"tariff"`
}

type CountryEntry struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Aliases []string    `yaml:"aliases"`
	Cities  []CityEntry `yaml:"cities"`
}

type CityEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

func (c CatalogConfig) check() error {
	seen := map[string]struct{}{}
	for _, w := range c.Warehouses {
		if w.Code == "" || w.Hub == "" {
			return errors.New("warehouse code and hub are required")
		}
		k := strings.ToUpper(w.Code)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate warehouse %q", w.Code)
		}
		seen[k] = struct{}{}
	}
	for _, ct := range c.Countries {
		if ct.ID == "" {
			return fmt.Errorf("country %q has no id", ct.Name)
		}
		for _, city := range ct.Cities {
			if city.ID == "" {
				return fmt.Errorf("city %q in %s has no id", city.Name, ct.ID)
			}
		}
	}
	return nil
}

const euTariff = "qwintry_ecopost"

// DefaultWarehouses lists Qwintry hubs in the order shown to users; the
// 1-based position is the numeric selection index.
func DefaultWarehouses() []WarehouseEntry {
	return []WarehouseEntry{
		{Code: "US", Hub: "US1", Name: "🇺🇸 США", Aliases: []string{"сша", "usa", "америка", "us"}},
		{Code: "DE", Hub: "DE1", Name: "🇩🇪 Германия", Aliases: []string{"германия", "germany", "de"}, Tariff: euTariff},
		{Code: "UK", Hub: "UK1", Name: "🇬🇧 Великобритания", Aliases: []string{"великобритания", "англия", "uk", "gb"}, Tariff: euTariff},
		{Code: "ES", Hub: "ES1", Name: "🇪🇸 Испания", Aliases: []string{"испания", "spain", "es"}, Tariff: euTariff},
		{Code: "CN", Hub: "CN1", Name: "🇨🇳 Китай", Aliases: []string{"китай", "china", "cn"}},
	}
}

func DefaultCountries() []CountryEntry {
	return []CountryEntry{
		{
			ID: "RU", Name: "Россия", Aliases: []string{"россия", "russia", "рф", "ru", "643"},
			Cities: []CityEntry{
				{ID: "4050", Name: "Москва", Aliases: []string{"москва", "moscow", "мск"}},
				{ID: "4962", Name: "Санкт-Петербург", Aliases: []string{"санкт-петербург", "петербург", "спб", "saint petersburg", "st. petersburg"}},
				{ID: "4549", Name: "Новосибирск", Aliases: []string{"новосибирск", "novosibirsk"}},
				{ID: "3753", Name: "Екатеринбург", Aliases: []string{"екатеринбург", "yekaterinburg", "екб"}},
				{ID: "3859", Name: "Казань", Aliases: []string{"казань", "kazan"}},
			},
		},
		{
			ID: "BY", Name: "Беларусь", Aliases: []string{"беларусь", "белоруссия", "belarus", "by", "112"},
			Cities: []CityEntry{
				{ID: "101", Name: "Минск", Aliases: []string{"минск", "minsk"}},
				{ID: "102", Name: "Гомель", Aliases: []string{"гомель", "gomel"}},
			},
		},
		{
			ID: "KZ", Name: "Казахстан", Aliases: []string{"казахстан", "kazakhstan", "kz", "398"},
			Cities: []CityEntry{
				{ID: "201", Name: "Алматы", Aliases: []string{"алматы", "almaty", "алма-ата"}},
				{ID: "202", Name: "Астана", Aliases: []string{"астана", "astana"}},
			},
		},
		{
			ID: "UZ", Name: "Узбекистан", Aliases: []string{"узбекистан", "uzbekistan", "uz", "860"},
			Cities: []CityEntry{
				{ID: "301", Name: "Ташкент", Aliases: []string{"ташкент", "tashkent"}},
			},
		},
		{
			ID: "AM", Name: "Армения", Aliases: []string{"армения", "armenia", "am", "051"},
			Cities: []CityEntry{
				{ID: "401", Name: "Ереван", Aliases: []string{"ереван", "yerevan"}},
			},
		},
		{
			ID: "GE", Name: "Грузия", Aliases: []string{"грузия", "georgia", "ge", "268"},
			Cities: []CityEntry{
				{ID: "501", Name: "Тбилиси", Aliases: []string{"тбилиси", "tbilisi"}},
			},
		},
	}
}
