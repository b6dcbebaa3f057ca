package domain

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalogue entry mirrored from the commerce platform.
type Product struct {
	ID         string    `json:"id"`
	ShopifyID  string    `json:"shopify_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	ImageURL   string    `json:"image_url,omitempty"`
	SalesCount int       `json:"sales_count"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
