// Package rolecatalog loads the role tiers and seeds them into storage.
package rolecatalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/storefront-api/internal/core/domain"
	"github.com/99minutos/storefront-api/internal/core/ports"
)

//go:embed roles.yaml
var defaultCatalog []byte

type catalogFile struct {
	Roles []roleEntry `yaml:"roles"`
}

type roleEntry struct {
	Name         string   `yaml:"name"`
	Capabilities []string `yaml:"capabilities"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) ([]*domain.Role, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read role catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a catalog. Unknown capability names, duplicate or empty role
// names, and a catalog without the default role are rejected.
func Parse(data []byte) ([]*domain.Role, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse role catalog: %w", err)
	}

	seen := make(map[string]bool, len(cf.Roles))
	roles := make([]*domain.Role, 0, len(cf.Roles))
	for _, e := range cf.Roles {
		if e.Name == "" {
			return nil, fmt.Errorf("role catalog: role without name")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("role catalog: duplicate role %q", e.Name)
		}
		seen[e.Name] = true

		set := make(domain.CapabilitySet, len(e.Capabilities))
		for _, name := range e.Capabilities {
			c, err := domain.ParseCapability(name)
			if err != nil {
				return nil, fmt.Errorf("role catalog: role %s: %w", e.Name, err)
			}
			set[c] = true
		}
		roles = append(roles, &domain.Role{Name: domain.RoleName(e.Name), Capabilities: set})
	}

	if !seen[string(domain.DefaultRole)] {
		return nil, fmt.Errorf("role catalog: default role %s missing", domain.DefaultRole)
	}
	return roles, nil
}

// Sync upserts every role so stored flags match the catalog.
func Sync(ctx context.Context, repo ports.RoleRepository, roles []*domain.Role, log zerolog.Logger) error {
	for _, r := range roles {
		if err := repo.Upsert(ctx, r); err != nil {
			return err
		}
		log.Debug().Str("role", string(r.Name)).Int("capabilities", len(r.Capabilities)).Msg("role synced")
	}
	log.Info().Int("roles", len(roles)).Msg("role catalog synced")
	return nil
}
