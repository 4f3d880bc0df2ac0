package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := testConfig()
	c, err := NewCatalog(cfg)
	require.NoError(t, err)
	return NewEngine(c, cfg.Tenant)
}

func superadmin() *User {
	return &User{ID: "u-root", Type: TypeSuperadmin}
}

func admin(tenantID string) *User {
	u := &User{ID: "u-admin", Type: TypeAdmin, Attributes: map[string]string{}}
	if tenantID != "" {
		u.Attributes["shop_id"] = tenantID
	}
	return u
}

func plain(perms ...string) *User {
	return &User{
		ID:                "u-plain",
		Type:              TypeUser,
		Attributes:        map[string]string{"shop_id": "shop-1"},
		DirectPermissions: perms,
	}
}

// TestPurpose: Validates the unconditional superadmin bypass across tenants.
// Scope: Unit Test
// Security: Elevated tier must not be constrained by tenant context or catalog membership.
// Expected: Decide allows every permission, known or not, for any tenant.
func TestEngine_Decide_SuperadminBypassesEverything(t *testing.T) {
	e := testEngine(t)
	u := superadmin()

	assert.True(t, e.Decide(u, "orders.view", ""))
	assert.True(t, e.Decide(u, "orders.view", "shop-1"))
	assert.True(t, e.Decide(u, "orders.view", "shop-other"))
	// Even permissions that are not in the catalog.
	assert.True(t, e.Decide(u, "not.a.permission", "shop-1"))
}

// TestPurpose: Validates the tenant-scoped admin bypass.
// Scope: Unit Test
// Security: Multi-tenant boundary enforcement: an admin's blanket access
// must never cross into another tenant.
// Expected: Allow within own tenant or with no tenant constraint; deny elsewhere.
func TestEngine_Decide_AdminScopedToOwnTenant(t *testing.T) {
	e := testEngine(t)
	u := admin("shop-1")

	assert.True(t, e.Decide(u, "orders.view", "shop-1"))
	assert.True(t, e.Decide(u, "orders.view", ""), "no tenant constraint given")
	assert.False(t, e.Decide(u, "orders.view", "shop-2"))
}

func TestEngine_Decide_AdminWithoutTenantValue(t *testing.T) {
	e := testEngine(t)
	u := admin("")

	// Deny-unless-no-tenant-specified: an admin that cannot prove tenancy
	// gets no tenant-scoped bypass.
	assert.False(t, e.Decide(u, "orders.view", "shop-1"))
	assert.True(t, e.Decide(u, "orders.view", ""))
}

func TestEngine_Decide_PlainUserExactMembership(t *testing.T) {
	e := testEngine(t)
	u := plain("orders.view", "customers.view")

	assert.True(t, e.Decide(u, "orders.view", "shop-1"))
	assert.True(t, e.Decide(u, "customers.view", ""))
	assert.False(t, e.Decide(u, "orders.delete", "shop-1"))
	assert.False(t, e.Decide(u, "not.a.permission", ""))
}

func TestEngine_Decide_NilUserDenied(t *testing.T) {
	e := testEngine(t)
	assert.False(t, e.Decide(nil, "orders.view", "shop-1"))
}

func TestEngine_Decide_Pure(t *testing.T) {
	e := testEngine(t)
	u := plain("orders.view")

	first := e.Decide(u, "orders.view", "shop-1")
	second := e.Decide(u, "orders.view", "shop-1")
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestEngine_DecideAny(t *testing.T) {
	e := testEngine(t)
	u := plain("customers.view")

	assert.True(t, e.DecideAny(u, []string{"orders.delete", "customers.view"}, ""))
	assert.False(t, e.DecideAny(u, []string{"orders.delete", "orders.create"}, ""))
	// Empty list is false, never an error.
	assert.False(t, e.DecideAny(u, nil, ""))
	assert.False(t, e.DecideAny(superadmin(), nil, ""))
}

func TestEngine_DecideAll(t *testing.T) {
	e := testEngine(t)
	u := plain("orders.view", "orders.create")

	assert.True(t, e.DecideAll(u, []string{"orders.view", "orders.create"}, ""))
	assert.False(t, e.DecideAll(u, []string{"orders.view", "orders.delete"}, ""))
	// Vacuous truth on the empty list, even for a nil user.
	assert.True(t, e.DecideAll(u, nil, ""))
	assert.True(t, e.DecideAll(nil, nil, ""))
}

func TestEngine_EffectivePermissions(t *testing.T) {
	e := testEngine(t)

	t.Run("superadmin gets full catalog", func(t *testing.T) {
		perms := e.EffectivePermissions(superadmin())
		assert.Len(t, perms, 5)
		assert.Contains(t, perms, "customers.manage")
	})

	t.Run("admin gets full catalog", func(t *testing.T) {
		perms := e.EffectivePermissions(admin("shop-1"))
		assert.Len(t, perms, 5)
	})

	t.Run("plain user gets union of direct and role permissions", func(t *testing.T) {
		u := plain("orders.view")
		u.Roles = []UserRole{
			{Name: "Manager", Permissions: []string{"orders.create", "orders.view"}},
			{Name: "Support", Permissions: []string{"customers.view"}},
		}
		perms := e.EffectivePermissions(u)
		assert.Equal(t, []string{"customers.view", "orders.create", "orders.view"}, perms)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, e.EffectivePermissions(nil))
	})
}

func TestEngine_HasRole(t *testing.T) {
	e := testEngine(t)
	u := plain()
	u.Roles = []UserRole{{Name: "Manager"}, {Name: "Support"}}

	assert.True(t, e.HasRole(u, "Manager"))
	assert.False(t, e.HasRole(u, "Owner"))
	assert.False(t, e.HasRole(nil, "Manager"))

	// Privilege tiers confer no implicit roles.
	assert.False(t, e.HasRole(superadmin(), "Manager"))

	assert.True(t, e.HasAnyRole(u, []string{"Owner", "Support"}))
	assert.False(t, e.HasAnyRole(u, []string{"Owner", "Auditor"}))
	assert.False(t, e.HasAnyRole(u, nil))
}

func TestParseUserType(t *testing.T) {
	assert.Equal(t, TypeSuperadmin, ParseUserType("superadmin"))
	assert.Equal(t, TypeAdmin, ParseUserType("admin"))
	assert.Equal(t, TypeUser, ParseUserType("user"))
	// Unknown tiers degrade to least privilege.
	assert.Equal(t, TypeUser, ParseUserType("root"))
	assert.Equal(t, TypeUser, ParseUserType(""))
}
