package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// DedupChecker abstracts the idempotency store for webhook orders.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, orderID int64) (bool, error)
	Mark(ctx context.Context, orderID int64) error
}

type orderService struct {
	sales ports.SalesRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewOrderService returns an OrderService implementation.
func NewOrderService(sales ports.SalesRepository, dedup DedupChecker, log zerolog.Logger) ports.OrderService {
	return &orderService{sales: sales, dedup: dedup, log: log}
}

// Process applies one verified order webhook to the local sales counters.
// Line items whose product is not mirrored locally are skipped.
func (s *orderService) Process(ctx context.Context, order domain.OrderEvent) error {
	// 1. Platforms retry deliveries; an order is only counted once.
	isDup, err := s.dedup.IsDuplicate(ctx, order.ID)
	if err != nil {
		s.log.Warn().Err(err).Int64("order_id", order.ID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Int64("order_id", order.ID).Msg("duplicate order skipped")
		return nil
	}

	// 2. Mark before writing so a retry racing this worker is dropped.
	if markErr := s.dedup.Mark(ctx, order.ID); markErr != nil {
		s.log.Warn().Err(markErr).Int64("order_id", order.ID).Msg("failed to set dedup key")
	}

	// 3. Increment each mirrored product.
	var failed, applied int
	for _, item := range order.LineItems {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		shopifyID := strconv.FormatInt(item.ProductID, 10)
		found, err := s.sales.IncrementByShopifyID(ctx, shopifyID, item.Quantity)
		if err != nil {
			failed++
			s.log.Error().Err(err).Int64("order_id", order.ID).Str("shopify_id", shopifyID).Msg("failed to increment sales")
			continue
		}
		if !found {
			s.log.Warn().Int64("order_id", order.ID).Str("shopify_id", shopifyID).Msg("order line item has no local product")
			continue
		}
		applied++
	}

	// 4. Audit trail (non-fatal on failure).
	if err := s.sales.InsertOrderEvent(ctx, &order); err != nil {
		s.log.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to insert order audit")
	}

	if failed > 0 {
		return fmt.Errorf("process order %d: %d line item(s) failed", order.ID, failed)
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int("line_items", len(order.LineItems)).
		Int("applied", applied).
		Msg("order processed")
	return nil
}
