package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/api/middleware"
	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authenticated(c echo.Context, id string) *domain.Principal {
	p := &domain.Principal{
		ID:     id,
		Email:  id + "@example.com",
		Method: domain.AuthMethodBearer,
		Role:   &domain.Role{Name: domain.RoleAdmin, Capabilities: domain.CapabilitySet{}},
	}
	middleware.SetPrincipal(c, p)
	return p
}

func expectHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
	return he
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	changeFn   func(ctx context.Context, userID, oldPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return s.changeFn(ctx, userID, oldPassword, newPassword)
}

type stubUserService struct {
	users []*domain.UserWithRole
	err   error
}

func (s *stubUserService) Me(_ context.Context, p *domain.Principal) (*domain.UserWithRole, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.UserWithRole{User: domain.User{ID: p.ID, Email: p.Email}, Role: p.Role}, nil
}

func (s *stubUserService) List(context.Context) ([]*domain.UserWithRole, error) {
	return s.users, s.err
}

type stubAPIKeyService struct {
	created   *ports.CreatedAPIKey
	keys      []*domain.APIKey
	err       error
	gotUserID string
	gotName   string
	gotKeyID  string
}

func (s *stubAPIKeyService) Create(_ context.Context, userID, name string) (*ports.CreatedAPIKey, error) {
	s.gotUserID, s.gotName = userID, name
	return s.created, s.err
}

func (s *stubAPIKeyService) List(_ context.Context, userID string) ([]*domain.APIKey, error) {
	s.gotUserID = userID
	return s.keys, s.err
}

func (s *stubAPIKeyService) Delete(_ context.Context, userID, keyID string) error {
	s.gotUserID, s.gotKeyID = userID, keyID
	return s.err
}

type stubProductService struct {
	result   *ports.ProductResult
	products []*domain.Product
	err      error
	gotInput ports.CreateProductInput
	gotID    string
	gotQty   int
}

func (s *stubProductService) Create(_ context.Context, _ *domain.Principal, in ports.CreateProductInput) (*ports.ProductResult, error) {
	s.gotInput = in
	return s.result, s.err
}

func (s *stubProductService) ListMine(context.Context, *domain.Principal) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) ListAll(context.Context) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Bestsellers(context.Context, *domain.Principal) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) AddSale(_ context.Context, _ *domain.Principal, id string, qty int) (*domain.Product, error) {
	s.gotID, s.gotQty = id, qty
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: id, Name: "Lamp", SalesCount: qty}, nil
}
