package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

func TestClient_Configured(t *testing.T) {
	assert.False(t, NewClient(Config{}, nil, zerolog.Nop()).Configured())
	assert.False(t, NewClient(Config{StoreDomain: "shop.myshopify.com"}, nil, zerolog.Nop()).Configured())
	assert.True(t, NewClient(Config{StoreDomain: "shop.myshopify.com", AdminToken: "t"}, nil, zerolog.Nop()).Configured())
}

func TestClient_CreateProduct(t *testing.T) {
	var got productEnvelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2025-10/products.json", r.URL.Path)
		assert.Equal(t, "admin-token", r.Header.Get("X-Shopify-Access-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product":{"id":8123456789,"title":"Mug (Shop)","variants":[{"price":"12.50"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{StoreDomain: "shop", AdminToken: "admin-token", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	p, err := c.CreateProduct(context.Background(), ports.CreateProductInput{Name: "Mug", Price: 12.5, ImageURL: "https://cdn/x.png"})
	require.NoError(t, err)

	assert.Equal(t, "8123456789", p.ID)
	assert.Equal(t, "Mug (Shop)", p.Title)
	assert.Equal(t, 12.5, p.Price)

	assert.Equal(t, "Mug", got.Product.Title)
	require.Len(t, got.Product.Variants, 1)
	assert.Equal(t, "12.50", got.Product.Variants[0].Price)
	require.Len(t, got.Product.Images, 1)
	assert.Equal(t, "https://cdn/x.png", got.Product.Images[0].Src)
}

func TestClient_CreateProduct_OmitsImagesWhenEmpty(t *testing.T) {
	var raw map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"product":{"id":1,"title":"x","variants":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{StoreDomain: "shop", AdminToken: "t", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	p, err := c.CreateProduct(context.Background(), ports.CreateProductInput{Name: "x", Price: 3})
	require.NoError(t, err)

	assert.NotContains(t, raw["product"], "images")
	assert.Equal(t, 3.0, p.Price, "falls back to requested price")
}

func TestClient_CreateProduct_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusUnprocessableEntity, `{"errors":{"title":["can't be blank"]}}`},
		{"missing id", http.StatusCreated, `{"product":{"title":"x"}}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{StoreDomain: "shop", AdminToken: "t", BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
			_, err := c.CreateProduct(context.Background(), ports.CreateProductInput{Name: "x", Price: 1})
			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

func TestClient_CreateProduct_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{StoreDomain: "shop", AdminToken: "t", BaseURL: url}, nil, zerolog.Nop())
	_, err := c.CreateProduct(context.Background(), ports.CreateProductInput{Name: "x", Price: 1})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
