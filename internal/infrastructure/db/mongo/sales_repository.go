package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// SalesRepository implements ports.SalesRepository using MongoDB.
type SalesRepository struct {
	db *mongo.Database
}

var _ ports.SalesRepository = (*SalesRepository)(nil)

// NewSalesRepository creates a new SalesRepository.
func NewSalesRepository(db *mongo.Database) *SalesRepository {
	return &SalesRepository{db: db}
}

// IncrementByShopifyID atomically adds qty to the matching product.
func (r *SalesRepository) IncrementByShopifyID(ctx context.Context, shopifyID string, qty int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.Collection(collectionProducts).UpdateOne(ctx,
		bson.M{"shopify_id": shopifyID},
		bson.M{"$inc": bson.M{"sales_count": qty}},
	)
	if err != nil {
		return false, fmt.Errorf("increment sales: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// InsertOrderEvent persists an order to the order_events audit collection.
func (r *SalesRepository) InsertOrderEvent(ctx context.Context, order *domain.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	items := make(bson.A, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, bson.M{
			"product_id": li.ProductID,
			"variant_id": li.VariantID,
			"quantity":   li.Quantity,
			"price":      li.Price,
			"title":      li.Title,
		})
	}

	_, err := r.db.Collection(collectionOrderEvents).InsertOne(ctx, bson.M{
		"order_id":     order.ID,
		"line_items":   items,
		"total_price":  order.TotalPrice,
		"created_at":   order.CreatedAt,
		"processed_at": time.Now().UTC(),
	})
	return err
}

// EnsureIndexes creates the order id index on the audit collection.
func (r *SalesRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.db.Collection(collectionOrderEvents).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}},
	})
	return err
}
