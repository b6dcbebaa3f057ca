package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

// apiKeyEntropy is the number of random bytes behind each key; base64url
// without padding turns 32 bytes into exactly 43 characters.
const apiKeyEntropy = 32

type apiKeyService struct {
	keys   ports.APIKeyRepository
	hasher ports.SecretHasher
	random io.Reader
	log    zerolog.Logger
}

// NewAPIKeyService returns an APIKeyService implementation.
func NewAPIKeyService(keys ports.APIKeyRepository, hasher ports.SecretHasher, log zerolog.Logger) ports.APIKeyService {
	return &apiKeyService{keys: keys, hasher: hasher, random: rand.Reader, log: log}
}

// Create issues a new key. The plaintext is returned once and never stored.
func (s *apiKeyService) Create(ctx context.Context, userID, name string) (*ports.CreatedAPIKey, error) {
	buf := make([]byte, apiKeyEntropy)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("create api key: entropy: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(buf)
	plaintext := domain.APIKeyPrefix + body

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("create api key: hash: %w", err)
	}

	key, err := s.keys.Create(ctx, &domain.APIKey{
		UserID:    userID,
		Name:      name,
		Prefix:    body[:domain.APIKeyLookupLen],
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("api_key_id", key.ID).Msg("api key created")
	return &ports.CreatedAPIKey{Plaintext: plaintext, Key: key}, nil
}

func (s *apiKeyService) List(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

// Delete revokes a key. Only its owner may delete it.
func (s *apiKeyService) Delete(ctx context.Context, userID, keyID string) error {
	key, err := s.keys.FindByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.UserID != userID {
		return domain.ErrNotOwner
	}
	if err := s.keys.Delete(ctx, key.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("api_key_id", key.ID).Msg("api key revoked")
	return nil
}
