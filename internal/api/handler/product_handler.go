package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/api/metrics"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// ProductHandler handles HTTP requests for catalogue operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create publishes a product on the commerce platform and records it locally.
// Without platform credentials the product is stored locally only.
//
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     APIKeyAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  createProductResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), p, ports.CreateProductInput{
		Name:     req.Name,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}

	resp := createProductResponse{Product: res.Product}
	mode := "shopify"
	if res.Mock {
		mode = "mock"
		resp.Mock = true
		resp.Message = "Product created in DB only (Shopify mock mode)"
	}
	metrics.ProductsCreatedTotal.WithLabelValues(mode).Inc()

	return c.JSON(http.StatusCreated, resp)
}

// ListAll returns every product.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Security     APIKeyAuth
// @Success      200  {object}  productsResponse
// @Failure      401  {object}  map[string]string
// @Router       /products [get]
func (h *ProductHandler) ListAll(c echo.Context) error {
	products, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	products = nonNil(products)
	return c.JSON(http.StatusOK, productsResponse{Products: products, Count: len(products)})
}

// ListMine returns the caller's products, newest first.
//
// @Summary      List my products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Security     APIKeyAuth
// @Success      200  {object}  myProductsResponse
// @Failure      401  {object}  map[string]string
// @Router       /my-products [get]
func (h *ProductHandler) ListMine(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.service.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, myProductsResponse{Products: nonNil(products)})
}

// Bestsellers returns the caller's products ranked by sales.
//
// @Summary      My bestsellers
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Security     APIKeyAuth
// @Success      200  {object}  bestsellersResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /my-bestsellers [get]
func (h *ProductHandler) Bestsellers(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	products, err := h.service.Bestsellers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	products = nonNil(products)
	return c.JSON(http.StatusOK, bestsellersResponse{Bestsellers: products, Count: len(products)})
}

// AddSale records manual sales on one of the caller's products.
//
// @Summary      Add sale
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     APIKeyAuth
// @Param        id    path      string          true   "Product ID"
// @Param        body  body      addSaleRequest  false  "Quantity, defaults to 1"
// @Success      200   {object}  addSaleResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id}/add-sale [post]
func (h *ProductHandler) AddSale(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req addSaleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	product, err := h.service.AddSale(c.Request().Context(), p, c.Param("id"), qty)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, addSaleResponse{
		Success: true,
		Message: fmt.Sprintf("Added %d sale(s) to product %q", qty, product.Name),
		Product: product,
	})
}
