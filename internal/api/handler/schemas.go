package handler

import (
	"time"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

// --- Accounts ---

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type registerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
	User      userSummary `json:"user"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpassword"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type myUserResponse struct {
	User *domain.UserWithRole `json:"user"`
}

type usersResponse struct {
	Users []*domain.UserWithRole `json:"users"`
	Count int                    `json:"count"`
}

// --- API keys ---

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50,keyname"`
}

type apiKeyInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type createAPIKeyResponse struct {
	Message string     `json:"message"`
	Warning string     `json:"warning"`
	APIKey  string     `json:"api_key"`
	KeyInfo apiKeyInfo `json:"key_info"`
}

type listAPIKeysResponse struct {
	Count   int              `json:"count"`
	APIKeys []*domain.APIKey `json:"api_keys"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Products ---

type createProductRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=200"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

type createProductResponse struct {
	Product *domain.Product `json:"product"`
	Mock    bool            `json:"mock,omitempty"`
	Message string          `json:"message,omitempty"`
}

type productsResponse struct {
	Products []*domain.Product `json:"products"`
	Count    int               `json:"count"`
}

type myProductsResponse struct {
	Products []*domain.Product `json:"products"`
}

type bestsellersResponse struct {
	Bestsellers []*domain.Product `json:"bestsellers"`
	Count       int               `json:"count"`
}

type addSaleRequest struct {
	Quantity int `json:"quantity"`
}

type addSaleResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

func summarize(u *domain.User) userSummary {
	return userSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// nonNil keeps empty listings rendered as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
