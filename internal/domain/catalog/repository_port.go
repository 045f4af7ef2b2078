// internal/domain/catalog/repository_port.go
package catalog

import "context"

// Filter narrows catalog listings. Zero value matches everything.
type Filter struct {
	IDs         []string
	Brand       string
	SearchQuery string
	InStockOnly bool
}

// Repository is the catalog persistence port.
type Repository interface {
	// NewID reserves a fresh document id.
	NewID() string

	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, filter Filter) ([]Product, error)

	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error

	// ListBestSellers returns products with isBestSeller=true sorted by
	// bestSellerOrder ascending, capped at MaxBestSellers.
	ListBestSellers(ctx context.Context) ([]Product, error)

	// ListTopSold returns up to limit products by soldCount descending,
	// excluding the given ids.
	ListTopSold(ctx context.Context, limit int, excludeIDs []string) ([]Product, error)

	// AssignBestSellerSlot marks the product as a best seller on the
	// lowest free slot, atomically with respect to concurrent admins.
	// Returns ErrBestSellerSlotsFull when all slots are taken.
	AssignBestSellerSlot(ctx context.Context, id string) (int, error)

	// MoveBestSellerSlot gives the product the requested slot; when the
	// slot is held by another product the two orders are swapped so no
	// duplicate slot value ever persists.
	MoveBestSellerSlot(ctx context.Context, id string, newOrder int) error

	// ClearBestSeller clears both isBestSeller and bestSellerOrder.
	ClearBestSeller(ctx context.Context, id string) error
}
