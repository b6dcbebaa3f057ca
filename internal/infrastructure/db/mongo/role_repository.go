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

// RoleRepository stores one document per role tier with a top-level boolean
// field per capability.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

func roleFromDoc(m bson.M) (*domain.Role, error) {
	oid, ok := m["_id"].(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("role document has no object id")
	}
	name, _ := m["name"].(string)

	set := make(domain.CapabilitySet, len(domain.AllCapabilities))
	for _, c := range domain.AllCapabilities {
		if v, ok := m[string(c)].(bool); ok && v {
			set[c] = true
		}
	}
	return &domain.Role{ID: oid.Hex(), Name: domain.RoleName(name), Capabilities: set}, nil
}

// roleFlags renders every known capability explicitly, so revoking a flag in
// the catalog overwrites a previously granted one.
func roleFlags(role *domain.Role) bson.M {
	set := bson.M{"name": string(role.Name)}
	for _, c := range domain.AllCapabilities {
		set[string(c)] = role.Capabilities[c]
	}
	return set
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m bson.M
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return roleFromDoc(m)
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": string(name)})
}

// Upsert creates the role or replaces its flags, matching on name. The
// role's ID is filled in from the stored document.
func (r *RoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{
		"$set":         roleFlags(role),
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}

	var m bson.M
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"name": string(role.Name)}, update, opts).Decode(&m); err != nil {
		return fmt.Errorf("upsert role %s: %w", role.Name, err)
	}
	stored, err := roleFromDoc(m)
	if err != nil {
		return err
	}
	role.ID = stored.ID
	return nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	out := make([]*domain.Role, 0, len(docs))
	for _, m := range docs {
		role, err := roleFromDoc(m)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, nil
}

// EnsureIndexes creates the unique name index.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
