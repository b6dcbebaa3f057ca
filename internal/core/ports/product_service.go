package ports

import (
	"context"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// CreateProductInput carries the fields needed to create a product.
type CreateProductInput struct {
	Name     string
	Price    float64
	ImageURL string
}

// ProductResult is returned after creating a product. Mock is true when the
// commerce platform was not configured and the product only exists locally.
type ProductResult struct {
	Product *domain.Product
	Mock    bool
}

// PlatformProduct is what the commerce platform reports back on creation.
type PlatformProduct struct {
	ID    string
	Title string
	Price float64
}

// CommerceClient creates products on the external commerce platform.
type CommerceClient interface {
	Configured() bool
	CreateProduct(ctx context.Context, in CreateProductInput) (*PlatformProduct, error)
}

// ProductService defines use-case operations for products.
type ProductService interface {
	Create(ctx context.Context, p *domain.Principal, in CreateProductInput) (*ProductResult, error)
	ListMine(ctx context.Context, p *domain.Principal) ([]*domain.Product, error)
	ListAll(ctx context.Context) ([]*domain.Product, error)
	Bestsellers(ctx context.Context, p *domain.Principal) ([]*domain.Product, error)
	AddSale(ctx context.Context, p *domain.Principal, productID string, qty int) (*domain.Product, error)
}
