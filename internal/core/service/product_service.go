package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

type ProductService struct {
	repo     ports.ProductRepository
	commerce ports.CommerceClient
	logger   zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, commerce ports.CommerceClient, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, commerce: commerce, logger: logger}
}

// Create publishes the product on the commerce platform and mirrors it
// locally. The route gate enforces can_post_products; attaching an image
// additionally requires can_upload_images, which depends on the body. When
// the platform is not configured the product is stored with a mock id.
func (s *ProductService) Create(ctx context.Context, p *domain.Principal, in ports.CreateProductInput) (*ports.ProductResult, error) {
	if in.ImageURL != "" {
		if err := domain.Authorize(p, domain.CapUploadImages); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	mock := !s.commerce.Configured()

	shopifyID, name, price := "", in.Name, in.Price
	if mock {
		shopifyID = mockProductID(now)
		s.logger.Warn().Str("shopify_id", shopifyID).Msg("commerce platform not configured, storing mock product")
	} else {
		created, err := s.commerce.CreateProduct(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}
		shopifyID = created.ID
		if created.Title != "" {
			name = created.Title
		}
		if created.Price > 0 {
			price = created.Price
		}
	}

	product, err := s.repo.Create(ctx, &domain.Product{
		ShopifyID: shopifyID,
		Name:      name,
		Price:     price,
		ImageURL:  in.ImageURL,
		CreatedBy: p.ID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("shopify_id", shopifyID).
		Str("user_id", p.ID).
		Bool("mock", mock).
		Msg("product created")

	return &ports.ProductResult{Product: product, Mock: mock}, nil
}

func (s *ProductService) ListMine(ctx context.Context, p *domain.Principal) ([]*domain.Product, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByCreator(ctx, p.ID)
}

func (s *ProductService) ListAll(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListAll(ctx)
}

// Bestsellers returns the caller's products ranked by sales.
func (s *ProductService) Bestsellers(ctx context.Context, p *domain.Principal) ([]*domain.Product, error) {
	return s.repo.Bestsellers(ctx, p.ID)
}

// AddSale records qty manual sales on a product owned by the caller.
func (s *ProductService) AddSale(ctx context.Context, p *domain.Principal, productID string, qty int) (*domain.Product, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if qty <= 0 {
		qty = 1
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CreatedBy != p.ID {
		return nil, domain.ErrNotOwner
	}

	updated, err := s.repo.AddSales(ctx, product.ID, qty)
	if err != nil {
		return nil, fmt.Errorf("add sale: %w", err)
	}
	return updated, nil
}

// mockProductID returns an id like mock_1700000000000_1b4e28ba.
func mockProductID(now time.Time) string {
	return fmt.Sprintf("mock_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
