package catalog

import (
	"context"

	"staybook/internal/infra/provider"
)

// InventoryAPI is the slice of the provider client the catalog needs.
type InventoryAPI interface {
	ListListings(ctx context.Context, params provider.ListParams) ([]provider.Listing, error)
	GetListing(ctx context.Context, id string) (provider.Listing, error)
}
