package ports

import (
	"context"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// OrderService applies verified order webhooks to sales counters.
type OrderService interface {
	Process(ctx context.Context, order domain.OrderEvent) error
}
