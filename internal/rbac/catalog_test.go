package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Modules: []ModuleGroup{
			{
				Module: "orders",
				Permissions: []Permission{
					{Name: "View orders", ShortName: "orders.view"},
					{Name: "Create orders", ShortName: "orders.create"},
					{Name: "Delete orders", ShortName: "orders.delete"},
				},
			},
			{
				Module: "customers",
				Permissions: []Permission{
					{Name: "View customers", ShortName: "customers.view"},
					{Name: "Manage customers", ShortName: "customers.manage"},
				},
			},
		},
		Tenant: TenantConfig{Field: "shop_id", Model: "Shop"},
	}
}

func TestCatalog_IsValid(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	assert.True(t, c.IsValid("orders.view"))
	assert.True(t, c.IsValid("customers.manage"))
	assert.False(t, c.IsValid("orders.unknown"))
	assert.False(t, c.IsValid(""))
}

func TestCatalog_DuplicateShortNameRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Modules = append(cfg.Modules, ModuleGroup{
		Module: "extra",
		Permissions: []Permission{
			{Name: "Shadowed", ShortName: "orders.view"},
		},
	})

	_, err := NewCatalog(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders.view")
}

func TestCatalog_ValidateMany_Partition(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	valid, invalid := c.ValidateMany([]string{
		"orders.view",
		"bogus.permission",
		"customers.view",
		"orders.view", // duplicate collapses
		"nope",
	})

	assert.Equal(t, []string{"customers.view", "orders.view"}, valid)
	assert.Equal(t, []string{"bogus.permission", "nope"}, invalid)

	// Every distinct input lands in exactly one side.
	assert.Len(t, valid, 2)
	assert.Len(t, invalid, 2)
}

func TestCatalog_ValidateMany_Idempotent(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	input := []string{"orders.create", "ghost.walk", "customers.manage"}
	v1, i1 := c.ValidateMany(input)
	v2, i2 := c.ValidateMany(input)

	assert.Equal(t, v1, v2)
	assert.Equal(t, i1, i2)
}

func TestCatalog_ValidateMany_Empty(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	valid, invalid := c.ValidateMany(nil)
	assert.Empty(t, valid)
	assert.Empty(t, invalid)
}

func TestCatalog_All_StableOrder(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	var shorts []string
	for _, p := range c.All() {
		shorts = append(shorts, p.ShortName)
	}

	// Module declaration order, then per-module declaration order.
	assert.Equal(t, []string{
		"orders.view",
		"orders.create",
		"orders.delete",
		"customers.view",
		"customers.manage",
	}, shorts)
	assert.Equal(t, 5, c.Len())
}

func TestCatalog_ByModule(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	orders := c.ByModule("orders")
	require.Len(t, orders, 3)
	assert.Equal(t, "orders.view", orders[0].ShortName)

	// Unknown module is an empty sequence, not an error.
	assert.Empty(t, c.ByModule("shipping"))

	assert.Equal(t, []string{"orders", "customers"}, c.Modules())
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c, err := NewCatalog(testConfig())
	require.NoError(t, err)

	all := c.All()
	all[0].ShortName = "mutated"

	assert.Equal(t, "orders.view", c.All()[0].ShortName)
}
