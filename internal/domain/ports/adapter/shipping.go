package adapter

import (
	"context"

	"qwintry-bot/internal/domain/model"
)

// ShippingCalculator prices a shipment with the external provider.
type ShippingCalculator interface {
	Calculate(ctx context.Context, req model.ShipmentRequest) (*model.Quote, error)
}

// CatalogSource lists destinations known to the provider.
type CatalogSource interface {
	Countries(ctx context.Context) ([]model.Country, error)
	Cities(ctx context.Context, countryID string) ([]model.City, error)
}
