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

// UserType is the closed set of privilege tiers. There are exactly three;
// each has its own decision rule in the engine and nothing else inspects
// the raw string.
type UserType string

const (
	// TypeSuperadmin bypasses every check, across all tenants.
	TypeSuperadmin UserType = "superadmin"

	// TypeAdmin bypasses every check within its own tenant only.
	TypeAdmin UserType = "admin"

	// TypeUser holds only the permissions explicitly granted to it.
	TypeUser UserType = "user"
)

// ParseUserType maps a raw identity claim to a privilege tier. Anything
// unrecognized degrades to the least-privileged tier.
func ParseUserType(s string) UserType {
	switch UserType(s) {
	case TypeSuperadmin:
		return TypeSuperadmin
	case TypeAdmin:
		return TypeAdmin
	default:
		return TypeUser
	}
}

// UserRole is the engine's read-only view of a role attached to a user:
// just the name and the permissions it bundles. The full role entity lives
// in the roles package; the engine never needs ids or timestamps.
type UserRole struct {
	Name        string
	Permissions []string
}

// User is the external identity the engine decides over. The core never
// writes to it.
//
// DirectPermissions is the authoritative permission set for plain users
// and is defined as already containing the flattened union of role-derived
// permissions; whatever populates the User (token issuer, user loader)
// owns that merge. The engine does not re-derive it per call.
//
// Attributes carries identity claims by name, including the configurable
// tenant field (see TenantConfig.Field).
type User struct {
	ID                string
	Type              UserType
	Attributes        map[string]string
	DirectPermissions []string
	Roles             []UserRole
}

// privilege is the classified form of a user: a closed tagged variant with
// one case per tier, resolved once per decision so bypass logic stays in a
// single place.
type privilege struct {
	tier     UserType
	tenantID string // populated for TypeAdmin only
}
