package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Dimensions are package sizes in centimetres.
type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// ShipmentRequest carries the four resolved form answers plus fixed package data.
type ShipmentRequest struct {
	Hub        string
	CountryID  string
	CityID     string
	Weight     string // kg, dot-separated
	Dimensions Dimensions
}

// Tariff is one priced service level in a quote.
type Tariff struct {
	Key      string
	Label    string
	Price    decimal.Decimal
	Currency string
	Days     string
}

type Quote struct {
	Tariffs      []Tariff
	CustomsLimit string
}

// Only keeps the tariff with the given key. An empty key keeps everything.
func (q *Quote) Only(key string) {
	if key == "" {
		return
	}
	kept := q.Tariffs[:0]
	for _, t := range q.Tariffs {
		if t.Key == key {
			kept = append(kept, t)
		}
	}
	q.Tariffs = kept
}

// SortByPrice orders tariffs ascending by price; equal prices keep key order.
func (q *Quote) SortByPrice() {
	sort.SliceStable(q.Tariffs, func(i, j int) bool {
		if c := q.Tariffs[i].Price.Cmp(q.Tariffs[j].Price); c != 0 {
			return c < 0
		}
		return q.Tariffs[i].Key < q.Tariffs[j].Key
	})
}
