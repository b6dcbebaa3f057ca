// Package shopify talks to the Shopify Admin REST API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

const (
	DefaultAPIVersion = "2025-10"
	defaultTimeout    = 15 * time.Second
	maxErrorBody      = 2048
)

// Config selects the store and credentials. The client is unconfigured when
// either StoreDomain or AdminToken is empty.
type Config struct {
	StoreDomain string
	AdminToken  string
	APIVersion  string
	// BaseURL overrides https://<StoreDomain> for tests.
	BaseURL string
}

type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, http: httpClient, log: log}
}

func (c *Client) Configured() bool {
	return c.cfg.StoreDomain != "" && c.cfg.AdminToken != ""
}

type productImage struct {
	Src string `json:"src"`
}

type productVariant struct {
	Price string `json:"price"`
}

type productBody struct {
	ID       json.Number      `json:"id,omitempty"`
	Title    string           `json:"title"`
	Variants []productVariant `json:"variants"`
	Images   []productImage   `json:"images,omitempty"`
}

type productEnvelope struct {
	Product productBody `json:"product"`
}

func (c *Client) productsURL() string {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + c.cfg.StoreDomain
	}
	return fmt.Sprintf("%s/admin/api/%s/products.json", strings.TrimRight(base, "/"), c.cfg.APIVersion)
}

// CreateProduct creates a single-variant product. Transport failures, non-2xx
// responses and responses without a product id are reported as
// domain.ErrUpstream.
func (c *Client) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*ports.PlatformProduct, error) {
	body := productEnvelope{Product: productBody{
		Title:    in.Name,
		Variants: []productVariant{{Price: strconv.FormatFloat(in.Price, 'f', 2, 64)}},
	}}
	if in.ImageURL != "" {
		body.Product.Images = []productImage{{Src: in.ImageURL}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.productsURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AdminToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: shopify request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(text)).Msg("shopify create product failed")
		return nil, fmt.Errorf("%w: shopify api error (%d): %s", domain.ErrUpstream, resp.StatusCode, text)
	}

	var out productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode shopify response: %v", domain.ErrUpstream, err)
	}
	if out.Product.ID == "" {
		return nil, fmt.Errorf("%w: missing product id in shopify response", domain.ErrUpstream)
	}

	price := in.Price
	if len(out.Product.Variants) > 0 {
		if p, err := strconv.ParseFloat(out.Product.Variants[0].Price, 64); err == nil {
			price = p
		}
	}

	return &ports.PlatformProduct{
		ID:    out.Product.ID.String(),
		Title: out.Product.Title,
		Price: price,
	}, nil
}
