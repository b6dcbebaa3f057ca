package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-api/internal/core/ports"
)

type APIKeyHandler struct {
	keys ports.APIKeyService
}

func NewAPIKeyHandler(keys ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// Create issues a new API key. The plaintext is only ever returned here.
//
// @Summary      Create API key
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAPIKeyRequest  true  "Key name"
// @Success      201   {object}  createAPIKeyResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api-keys [post]
func (h *APIKeyHandler) Create(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req createAPIKeyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.keys.Create(c.Request().Context(), p.ID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createAPIKeyResponse{
		Message: "API key created successfully",
		Warning: "Save this key now. You will not be able to see it again.",
		APIKey:  created.Plaintext,
		KeyInfo: apiKeyInfo{
			ID:        created.Key.ID,
			Name:      created.Key.Name,
			CreatedAt: created.Key.CreatedAt,
		},
	})
}

// List returns the caller's keys, newest first, without secrets.
//
// @Summary      List API keys
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAPIKeysResponse
// @Failure      401  {object}  map[string]string
// @Router       /api-keys [get]
func (h *APIKeyHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	keys, err := h.keys.List(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	keys = nonNil(keys)
	return c.JSON(http.StatusOK, listAPIKeysResponse{Count: len(keys), APIKeys: keys})
}

// Delete revokes one of the caller's keys.
//
// @Summary      Delete API key
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "API key ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api-keys/{id} [delete]
func (h *APIKeyHandler) Delete(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.keys.Delete(c.Request().Context(), p.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "API key deleted successfully"})
}
