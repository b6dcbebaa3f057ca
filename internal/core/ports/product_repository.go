package ports

import (
	"context"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// ListByCreator returns products of one user, newest first.
	ListByCreator(ctx context.Context, userID string) ([]*domain.Product, error)
	ListAll(ctx context.Context) ([]*domain.Product, error)
	// Bestsellers returns products of one user ordered by sales_count desc,
	// then created_at desc.
	Bestsellers(ctx context.Context, userID string) ([]*domain.Product, error)
	// AddSales atomically increments sales_count and returns the new state.
	AddSales(ctx context.Context, id string, qty int) (*domain.Product, error)
}

// SalesRepository applies webhook-driven sales updates.
type SalesRepository interface {
	// IncrementByShopifyID adds qty to the product mirrored from shopifyID.
	// found is false when no local product matches.
	IncrementByShopifyID(ctx context.Context, shopifyID string, qty int) (found bool, err error)
	// InsertOrderEvent persists an order to the audit collection.
	InsertOrderEvent(ctx context.Context, order *domain.OrderEvent) error
}
