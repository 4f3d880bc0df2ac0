// Copyright 2026 The Rolegate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import "sort"

// Engine is the authorization decision function. It is pure: decisions
// read only the immutable catalog and the caller-supplied User, never a
// store, and they never fail: absent users, unknown permissions, and
// empty permission lists all resolve to a boolean. One Engine is safe for
// unrestricted concurrent use.
type Engine struct {
	catalog  *Catalog
	tenantOf func(*User) string
}

// NewEngine builds an engine over a catalog. The tenant field name from
// configuration is resolved here, once, into an accessor; decision code
// never does string-keyed attribute lookups itself.
func NewEngine(catalog *Catalog, tenant TenantConfig) *Engine {
	field := tenant.Field
	return &Engine{
		catalog: catalog,
		tenantOf: func(u *User) string {
			return u.Attributes[field]
		},
	}
}

// classify resolves a user to its privilege tier. For admins it captures
// the user's own tenant id so Decide compares against it in one place.
func (e *Engine) classify(u *User) privilege {
	switch u.Type {
	case TypeSuperadmin:
		return privilege{tier: TypeSuperadmin}
	case TypeAdmin:
		return privilege{tier: TypeAdmin, tenantID: e.tenantOf(u)}
	default:
		return privilege{tier: TypeUser}
	}
}

// Decide reports whether the user holds the permission, optionally within
// a tenant context. tenantID == "" means no tenant constraint was given.
//
//   - nil user: deny.
//   - superadmin: allow unconditionally, catalog membership included.
//   - admin: allow when no tenant is specified, or when the user's own
//     tenant value matches it. An admin whose tenant value is absent is
//     denied any tenant-scoped check.
//   - plain user: allow iff the permission is in DirectPermissions.
func (e *Engine) Decide(u *User, permission string, tenantID string) bool {
	if u == nil {
		return false
	}
	p := e.classify(u)
	switch p.tier {
	case TypeSuperadmin:
		return true
	case TypeAdmin:
		if tenantID == "" {
			return true
		}
		return p.tenantID != "" && p.tenantID == tenantID
	default:
		for _, granted := range u.DirectPermissions {
			if granted == permission {
				return true
			}
		}
		return false
	}
}

// DecideAny reports whether the user holds at least one of the
// permissions. It short-circuits on the first allow. An empty list is
// false.
func (e *Engine) DecideAny(u *User, permissions []string, tenantID string) bool {
	for _, p := range permissions {
		if e.Decide(u, p, tenantID) {
			return true
		}
	}
	return false
}

// DecideAll reports whether the user holds every permission. It
// short-circuits on the first deny. An empty list is vacuously true.
func (e *Engine) DecideAll(u *User, permissions []string, tenantID string) bool {
	for _, p := range permissions {
		if !e.Decide(u, p, tenantID) {
			return false
		}
	}
	return true
}

// EffectivePermissions returns the full set of short names the user can
// exercise: the whole catalog for superadmins and admins, the union of
// DirectPermissions and role permissions for plain users. Sorted, deduped.
func (e *Engine) EffectivePermissions(u *User) []string {
	if u == nil {
		return nil
	}

	switch u.Type {
	case TypeSuperadmin, TypeAdmin:
		all := e.catalog.All()
		names := make([]string, 0, len(all))
		for _, p := range all {
			names = append(names, p.ShortName)
		}
		sort.Strings(names)
		return names
	}

	set := make(map[string]bool, len(u.DirectPermissions))
	for _, p := range u.DirectPermissions {
		set[p] = true
	}
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			set[p] = true
		}
	}
	names := make([]string, 0, len(set))
	for p := range set {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// HasRole reports whether the user carries a role with the given name.
// Privilege tiers confer no implicit roles; this is pure membership.
func (e *Engine) HasRole(u *User, roleName string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Name == roleName {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user carries at least one of the named
// roles.
func (e *Engine) HasAnyRole(u *User, roleNames []string) bool {
	for _, name := range roleNames {
		if e.HasRole(u, name) {
			return true
		}
	}
	return false
}
