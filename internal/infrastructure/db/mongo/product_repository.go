package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ShopifyID  string             `bson:"shopify_id"`
	Name       string             `bson:"name"`
	Price      float64            `bson:"price"`
	ImageURL   string             `bson:"image_url,omitempty"`
	SalesCount int                `bson:"sales_count"`
	CreatedBy  string             `bson:"created_by"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:         d.ID.Hex(),
		ShopifyID:  d.ShopifyID,
		Name:       d.Name,
		Price:      d.Price,
		ImageURL:   d.ImageURL,
		SalesCount: d.SalesCount,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
	}
}

// Create inserts a new product document with a zero sales count.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := productDoc{
		ShopifyID: p.ShopifyID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *ProductRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{"created_by": userID}, newestFirst)
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{}, newestFirst)
}

func (r *ProductRepository) Bestsellers(ctx context.Context, userID string) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{"created_by": userID}, bson.D{
		{Key: "sales_count", Value: -1},
		{Key: "created_at", Value: -1},
	})
}

// AddSales increments sales_count in a single atomic update.
func (r *ProductRepository) AddSales(ctx context.Context, id string, qty int) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"sales_count": qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("add sales: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes used by listings and webhook lookups.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shopify_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "sales_count", Value: -1}}},
	})
	return err
}
