package rolecatalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/storefront-api/internal/core/domain"
)

func byName(roles []*domain.Role) map[domain.RoleName]*domain.Role {
	m := make(map[domain.RoleName]*domain.Role, len(roles))
	for _, r := range roles {
		m[r.Name] = r
	}
	return m
}

func TestLoad_Default(t *testing.T) {
	roles, err := Load("")
	require.NoError(t, err)
	m := byName(roles)
	require.Len(t, m, 4)

	for _, c := range domain.AllCapabilities {
		assert.True(t, m[domain.RoleAdmin].Allows(c), "ADMIN should have %s", c)
		assert.False(t, m[domain.RoleBan].Allows(c), "BAN should not have %s", c)
	}

	assert.False(t, m[domain.RolePremium].Allows(domain.CapGetUsers))
	assert.True(t, m[domain.RolePremium].Allows(domain.CapGetBestsellers))
	assert.True(t, m[domain.RolePremium].Allows(domain.CapUploadImages))

	user := m[domain.RoleUser]
	assert.True(t, user.Allows(domain.CapPostLogin))
	assert.True(t, user.Allows(domain.CapPostProducts))
	assert.False(t, user.Allows(domain.CapUploadImages))
	assert.False(t, user.Allows(domain.CapGetBestsellers))
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roles:
  - name: USER
    capabilities: [can_post_login, can_get_bestsellers]
`), 0o600))

	roles, err := Load(path)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.True(t, roles[0].Allows(domain.CapGetBestsellers))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown capability": "roles:\n  - name: USER\n    capabilities: [can_fly]\n",
		"duplicate role":     "roles:\n  - name: USER\n  - name: USER\n",
		"empty name":         "roles:\n  - name: \"\"\n  - name: USER\n",
		"no default role":    "roles:\n  - name: ADMIN\n",
		"bad yaml":           "roles: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

type recordingRepo struct {
	upserted []domain.RoleName
}

func (r *recordingRepo) FindByID(context.Context, string) (*domain.Role, error) {
	return nil, domain.ErrRoleNotFound
}

func (r *recordingRepo) FindByName(context.Context, domain.RoleName) (*domain.Role, error) {
	return nil, domain.ErrRoleNotFound
}

func (r *recordingRepo) Upsert(_ context.Context, role *domain.Role) error {
	r.upserted = append(r.upserted, role.Name)
	return nil
}

func (r *recordingRepo) List(context.Context) ([]*domain.Role, error) { return nil, nil }

func TestSync(t *testing.T) {
	roles, err := Load("")
	require.NoError(t, err)

	repo := &recordingRepo{}
	require.NoError(t, Sync(context.Background(), repo, roles, zerolog.Nop()))
	assert.ElementsMatch(t, []domain.RoleName{domain.RoleAdmin, domain.RolePremium, domain.RoleUser, domain.RoleBan}, repo.upserted)
}
