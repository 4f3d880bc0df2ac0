package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRBAC = `
modules:
  - module: orders
    permissions:
      - name: View orders
        short_name: orders.view
      - name: Create orders
        short_name: orders.create
  - module: customers
    permissions:
      - name: View customers
        short_name: customers.view
tenant:
  field: shop_id
  model: Shop
`

func writeTempRBAC(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rbac.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRBAC(t *testing.T) {
	cfg, err := LoadRBAC(writeTempRBAC(t, sampleRBAC))
	require.NoError(t, err)

	// Declaration order survives parsing.
	require.Len(t, cfg.Modules, 2)
	assert.Equal(t, "orders", cfg.Modules[0].Module)
	assert.Equal(t, "customers", cfg.Modules[1].Module)
	assert.Equal(t, "orders.view", cfg.Modules[0].Permissions[0].ShortName)

	assert.Equal(t, "shop_id", cfg.Tenant.Field)
	assert.Equal(t, "Shop", cfg.Tenant.Model)
}

func TestLoadRBAC_MissingTenantField(t *testing.T) {
	_, err := LoadRBAC(writeTempRBAC(t, `
modules:
  - module: orders
    permissions:
      - name: View orders
        short_name: orders.view
tenant:
  model: Shop
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant.field")
}

func TestLoadRBAC_NoModules(t *testing.T) {
	_, err := LoadRBAC(writeTempRBAC(t, `
tenant:
  field: shop_id
`))
	require.Error(t, err)
}

func TestLoadRBAC_MissingFile(t *testing.T) {
	_, err := LoadRBAC(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("AUTH_TOKEN_SECRET", "hmac-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "rolegate", cfg.Database.Database)
	assert.Equal(t, "rbac.yaml", cfg.RBACPath)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoad_RequiredPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "x") // registers restore on cleanup
	os.Unsetenv("DB_PASSWORD")
	t.Setenv("AUTH_TOKEN_SECRET", "hmac-secret")

	_, err := Load()
	require.Error(t, err)
}
