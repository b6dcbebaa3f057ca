package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
	"github.com/99minutos/storefront-api/internal/infrastructure/queue"
)

const (
	// HeaderShopifyHMAC carries the base64 HMAC-SHA256 of the raw webhook body.
	HeaderShopifyHMAC = "X-Shopify-Hmac-Sha256"
	// HeaderShopifyWebhookID identifies a delivery; it is only logged.
	HeaderShopifyWebhookID = "X-Shopify-Webhook-Id"
)

// OrderQueue accepts verified orders for asynchronous processing.
type OrderQueue interface {
	Enqueue(order domain.OrderEvent) error
}

type WebhookHandler struct {
	verifier ports.WebhookVerifier
	orders   OrderQueue
	log      zerolog.Logger
}

func NewWebhookHandler(verifier ports.WebhookVerifier, orders OrderQueue, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, orders: orders, log: log}
}

// ShopifySales receives order-created webhooks. The signature is checked
// against the raw body before anything is decoded; line items are applied to
// sales counters by the order workers after the response is sent.
//
// @Summary      Shopify order webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Shopify-Hmac-Sha256  header    string  true  "Base64 HMAC-SHA256 of the body"
// @Success      200  {object}  successResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /webhooks/shopify-sales [post]
func (h *WebhookHandler) ShopifySales(c echo.Context) error {
	signature := c.Request().Header.Get(HeaderShopifyHMAC)
	if signature == "" {
		metrics.WebhooksReceivedTotal.WithLabelValues("missing_signature").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "missing webhook signature")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		metrics.WebhooksReceivedTotal.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "empty request body")
	}

	if !h.verifier.Verify(body, signature) {
		metrics.WebhooksReceivedTotal.WithLabelValues("invalid_signature").Inc()
		h.log.Warn().Str("remote_ip", c.RealIP()).Msg("webhook signature rejected")
		return domain.ErrWebhookSignatureInvalid
	}

	var order domain.OrderEvent
	if err := json.Unmarshal(body, &order); err != nil {
		metrics.WebhooksReceivedTotal.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order payload")
	}

	if err := h.orders.Enqueue(order); err != nil {
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrStopped) {
			metrics.WebhooksReceivedTotal.WithLabelValues("queue_full").Inc()
			h.log.Error().Int64("order_id", order.ID).Msg("order not queued, asking platform to retry")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "order queue unavailable")
		}
		return err
	}

	metrics.WebhooksReceivedTotal.WithLabelValues("accepted").Inc()
	h.log.Info().
		Int64("order_id", order.ID).
		Str("webhook_id", c.Request().Header.Get(HeaderShopifyWebhookID)).
		Int("line_items", len(order.LineItems)).
		Msg("order webhook accepted")
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
