package roles

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	// ErrRoleNotFound covers both a missing role id and a role that exists
	// under another tenant. The two are deliberately indistinguishable so
	// tenants cannot enumerate each other's roles.
	ErrRoleNotFound = errors.New("role not found")

	// ErrDuplicateRoleName means another role in the same tenant already
	// carries the name. Names are unique per tenant, not globally.
	ErrDuplicateRoleName = errors.New("duplicate role name")

	// ErrRoleInUse blocks deletion while assignments reference the role.
	// Deletion is blocked, never cascaded.
	ErrRoleInUse = errors.New("role in use")

	// ErrAlreadyAssigned rejects a redundant grant so callers get explicit
	// feedback instead of a silent no-op.
	ErrAlreadyAssigned = errors.New("role already assigned")

	// ErrNotAssigned rejects a redundant revoke.
	ErrNotAssigned = errors.New("role not assigned")

	// ErrStoreUnavailable wraps persistence failures and timeouts. Always
	// retryable at the caller's discretion; the service never retries.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Role is a named, tenant-scoped bundle of permission short names.
// Every entry in Permissions exists in the permission catalog; invalid
// entries are rejected at write time, never stored.
type Role struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Assignment is the user-role edge. The pair is unique; the edge belongs
// to the role's tenant, so roles are never assigned across tenants.
type Assignment struct {
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	GrantedAt time.Time `json:"granted_at"`
	GrantedBy string    `json:"granted_by,omitempty"`
}

// CreateRoleInput carries the caller-supplied fields for role creation.
type CreateRoleInput struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleInput is a partial update: nil fields are left untouched.
// A non-nil Permissions slice replaces the whole set after re-validation.
type UpdateRoleInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Permissions []string `json:"permissions"`
}

// RolePatch is the store-level projection of an update: only non-nil
// fields reach the database.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions []string
}

// Repository is the persistence boundary for roles and assignments. The
// service depends on nothing else. Find methods return (nil, nil) when the
// row is absent; implementations surface every non-domain failure wrapped
// in ErrStoreUnavailable.
//
// Implementations are responsible for the concurrency backstops the
// service-level checks cannot provide on their own: a uniqueness
// constraint on (tenant_id, name), a primary key on (user_id, role_id),
// and a RESTRICT reference from assignments to roles.
type Repository interface {
	FindRoleByName(ctx context.Context, tenantID, name string) (*Role, error)
	FindRoleByID(ctx context.Context, roleID, tenantID string) (*Role, error)
	ListRolesByTenant(ctx context.Context, tenantID string) ([]*Role, error)
	InsertRole(ctx context.Context, role *Role) (*Role, error)
	UpdateRole(ctx context.Context, roleID string, patch RolePatch) (*Role, error)
	DeleteRole(ctx context.Context, roleID string) error

	CountAssignmentsForRole(ctx context.Context, roleID string) (int, error)
	AssignmentExists(ctx context.Context, userID, roleID string) (bool, error)
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	DeleteAssignment(ctx context.Context, userID, roleID string) error
	ListRolesForUser(ctx context.Context, userID, tenantID string) ([]*Role, error)
}
