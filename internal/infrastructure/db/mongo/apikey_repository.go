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

type APIKeyRepository struct {
	col *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{col: db.Collection(collectionAPIKeys)}
}

type apiKeyDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Name      string             `bson:"name"`
	Prefix    string             `bson:"prefix"`
	KeyHash   string             `bson:"key_hash"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *apiKeyDoc) toDomain() *domain.APIKey {
	return &domain.APIKey{
		ID:        d.ID.Hex(),
		UserID:    hexOrEmpty(d.UserID),
		Name:      d.Name,
		Prefix:    d.Prefix,
		KeyHash:   d.KeyHash,
		CreatedAt: d.CreatedAt,
	}
}

func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	userID, ok := objectID(key.UserID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := apiKeyDoc{
		UserID:    userID,
		Name:      key.Name,
		Prefix:    key.Prefix,
		KeyHash:   key.KeyHash,
		CreatedAt: key.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*domain.APIKey, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrAPIKeyNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc apiKeyDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *APIKeyRepository) find(ctx context.Context, filter bson.M) ([]*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find api keys: %w", err)
	}
	var docs []apiKeyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}

	out := make([]*domain.APIKey, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) FindByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error) {
	return r.find(ctx, bson.M{"prefix": prefix})
}

func (r *APIKeyRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	oid, ok := objectID(userID)
	if !ok {
		return []*domain.APIKey{}, nil
	}
	return r.find(ctx, bson.M{"user_id": oid})
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrAPIKeyNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup-prefix and owner indexes.
func (r *APIKeyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "prefix", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	return err
}
