package model

// Warehouse is a shipping origin hub.
type Warehouse struct {
	Index int    `json:"index"` // 1-based position in the catalog
	Code  string `json:"code"`
	Hub   string `json:"hub"`
	Name  string `json:"name"`
	// Tariff restricts quotes to a single tariff key when set (EU hubs).
	Tariff string `json:"tariff,omitempty"`
}

type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type City struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CountryID string `json:"country_id"`
}
