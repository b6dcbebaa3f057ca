package domain

// LineItem is a single product line of a platform order.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Title     string `json:"title"`
}

// OrderEvent is the order-created payload delivered by the platform webhook.
type OrderEvent struct {
	ID         int64      `json:"id"`
	LineItems  []LineItem `json:"line_items"`
	TotalPrice string     `json:"total_price"`
	CreatedAt  string     `json:"created_at"`
}
