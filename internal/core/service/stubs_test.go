package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// ---- users ----

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		r.nextID++
		c.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[c.ID] = cloneUser(c)
	return c, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.TokenVersion = version
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- roles ----

type stubRoleRepo struct {
	roles map[string]*domain.Role
}

func caps(cs ...domain.Capability) domain.CapabilitySet {
	set := make(domain.CapabilitySet, len(cs))
	for _, c := range cs {
		set[c] = true
	}
	return set
}

// newStubRoleRepo seeds the four tiers with ids equal to their names.
func newStubRoleRepo() *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*domain.Role)}
	r.put(domain.RoleAdmin, caps(domain.AllCapabilities...))
	r.put(domain.RolePremium, caps(domain.CapPostLogin, domain.CapGetMyUser, domain.CapPostProducts, domain.CapUploadImages, domain.CapGetBestsellers))
	r.put(domain.RoleUser, caps(domain.CapPostLogin, domain.CapGetMyUser, domain.CapPostProducts))
	r.put(domain.RoleBan, caps())
	return r
}

func (r *stubRoleRepo) put(name domain.RoleName, set domain.CapabilitySet) {
	r.roles[string(name)] = &domain.Role{ID: string(name), Name: name, Capabilities: set}
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	return r.FindByID(ctx, string(name))
}

func (r *stubRoleRepo) Upsert(_ context.Context, role *domain.Role) error {
	r.roles[string(role.Name)] = role
	return nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

// ---- api keys ----

type stubAPIKeyRepo struct {
	keys   map[string]*domain.APIKey
	nextID int
}

func newStubAPIKeyRepo() *stubAPIKeyRepo {
	return &stubAPIKeyRepo{keys: make(map[string]*domain.APIKey)}
}

func (r *stubAPIKeyRepo) Create(_ context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	c := *k
	r.nextID++
	c.ID = fmt.Sprintf("key-%d", r.nextID)
	r.keys[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubAPIKeyRepo) FindByID(_ context.Context, id string) (*domain.APIKey, error) {
	if k, ok := r.keys[id]; ok {
		c := *k
		return &c, nil
	}
	return nil, domain.ErrAPIKeyNotFound
}

func (r *stubAPIKeyRepo) FindByPrefix(_ context.Context, prefix string) ([]*domain.APIKey, error) {
	var out []*domain.APIKey
	for _, k := range r.keys {
		if k.Prefix == prefix {
			c := *k
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubAPIKeyRepo) ListByUser(_ context.Context, userID string) ([]*domain.APIKey, error) {
	var out []*domain.APIKey
	for _, k := range r.keys {
		if k.UserID == userID {
			c := *k
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubAPIKeyRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.keys[id]; !ok {
		return domain.ErrAPIKeyNotFound
	}
	delete(r.keys, id)
	return nil
}

// ---- security ----

// plainHasher is a fast, deterministic stand-in for bcrypt.
type plainHasher struct{ calls int }

func (h *plainHasher) Hash(secret string) (string, error) {
	return "hashed:" + secret, nil
}

func (h *plainHasher) Verify(secret, digest string) bool {
	h.calls++
	return digest == "hashed:"+secret
}

// memCodec issues opaque tokens and remembers their claims.
type memCodec struct {
	mu     sync.Mutex
	issued map[string]domain.TokenClaims
	ttl    time.Duration
	now    func() time.Time
}

func newMemCodec() *memCodec {
	return &memCodec{issued: make(map[string]domain.TokenClaims), ttl: time.Hour, now: time.Now}
}

func (c *memCodec) Sign(claims domain.TokenClaims, ttl time.Duration) (string, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	claims.ExpiresAt = c.now().Add(ttl)
	token := fmt.Sprintf("tok-%d-%s-v%d", len(c.issued)+1, claims.Subject, claims.TokenVersion)
	c.issued[token] = claims
	return token, claims.ExpiresAt, nil
}

func (c *memCodec) Verify(token string) (*domain.TokenClaims, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	claims, ok := c.issued[token]
	if !ok || !c.now().Before(claims.ExpiresAt) {
		return nil, domain.ErrInvalidToken
	}
	return &claims, nil
}

func (c *memCodec) DefaultTTL() time.Duration { return c.ttl }

// clockThrottle is a per-key cooldown driven by a settable clock.
type clockThrottle struct {
	cooldown time.Duration
	now      time.Time
	until    map[string]time.Time
	err      error
}

func newClockThrottle(cooldown time.Duration) *clockThrottle {
	return &clockThrottle{cooldown: cooldown, now: time.Unix(1_700_000_000, 0), until: make(map[string]time.Time)}
}

func (t *clockThrottle) Acquire(_ context.Context, key string) (bool, time.Duration, error) {
	if t.err != nil {
		return false, 0, t.err
	}
	if u, ok := t.until[key]; ok && t.now.Before(u) {
		return false, u.Sub(t.now), nil
	}
	t.until[key] = t.now.Add(t.cooldown)
	return true, 0, nil
}

func (t *clockThrottle) advance(d time.Duration) { t.now = t.now.Add(d) }

// ---- products ----

type stubProductRepo struct {
	products map[string]*domain.Product
	nextID   int
	addErr   error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	c := *p
	r.nextID++
	c.ID = fmt.Sprintf("prod-%d", r.nextID)
	r.products[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := r.products[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) filter(keep func(*domain.Product) bool) []*domain.Product {
	var out []*domain.Product
	for _, p := range r.products {
		if keep(p) {
			c := *p
			out = append(out, &c)
		}
	}
	return out
}

func (r *stubProductRepo) ListByCreator(_ context.Context, userID string) ([]*domain.Product, error) {
	return r.filter(func(p *domain.Product) bool { return p.CreatedBy == userID }), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]*domain.Product, error) {
	return r.filter(func(*domain.Product) bool { return true }), nil
}

func (r *stubProductRepo) Bestsellers(_ context.Context, userID string) ([]*domain.Product, error) {
	out := r.filter(func(p *domain.Product) bool { return p.CreatedBy == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].SalesCount > out[j].SalesCount })
	return out, nil
}

func (r *stubProductRepo) AddSales(_ context.Context, id string, qty int) (*domain.Product, error) {
	if r.addErr != nil {
		return nil, r.addErr
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.SalesCount += qty
	c := *p
	return &c, nil
}

type stubCommerce struct {
	configured bool
	created    []ports.CreateProductInput
	err        error
}

func (c *stubCommerce) Configured() bool { return c.configured }

func (c *stubCommerce) CreateProduct(_ context.Context, in ports.CreateProductInput) (*ports.PlatformProduct, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, in)
	return &ports.PlatformProduct{ID: fmt.Sprintf("%d", 9000+len(c.created)), Title: in.Name, Price: in.Price}, nil
}

// ---- orders ----

type stubSalesRepo struct {
	counts   map[string]int
	failIDs  map[string]bool
	audited  []int64
	auditErr error
}

func newStubSalesRepo(known ...string) *stubSalesRepo {
	r := &stubSalesRepo{counts: make(map[string]int), failIDs: make(map[string]bool)}
	for _, id := range known {
		r.counts[id] = 0
	}
	return r
}

func (r *stubSalesRepo) IncrementByShopifyID(_ context.Context, shopifyID string, qty int) (bool, error) {
	if r.failIDs[shopifyID] {
		return false, errors.New("write failed")
	}
	if _, ok := r.counts[shopifyID]; !ok {
		return false, nil
	}
	r.counts[shopifyID] += qty
	return true, nil
}

func (r *stubSalesRepo) InsertOrderEvent(_ context.Context, order *domain.OrderEvent) error {
	if r.auditErr != nil {
		return r.auditErr
	}
	r.audited = append(r.audited, order.ID)
	return nil
}

type stubDedup struct {
	seen     map[int64]bool
	checkErr error
}

func newStubDedup() *stubDedup { return &stubDedup{seen: make(map[int64]bool)} }

func (d *stubDedup) IsDuplicate(_ context.Context, id int64) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	return d.seen[id], nil
}

func (d *stubDedup) Mark(_ context.Context, id int64) error {
	d.seen[id] = true
	return nil
}

// ---- helpers ----

func bearer(token string) string { return "Bearer " + token }
