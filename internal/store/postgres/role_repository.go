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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rolegate/rolegate/internal/id"
	"github.com/rolegate/rolegate/internal/roles"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// RoleRepository implements roles.Repository on PostgreSQL. The schema's
// constraints back up the service-level checks: unique (tenant_id, name),
// primary key (user_id, role_id), and RESTRICT from assignments to roles.
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// storeErr wraps driver failures so callers can treat them uniformly as
// retryable, distinct from domain errors.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", roles.ErrStoreUnavailable, op, err)
}

// malformedRoleID reports whether a caller-supplied role id cannot be a
// UUID. The roles.id column is UUID, so such an id matches no row; it is
// treated as absent up front instead of failing the parameter cast.
func malformedRoleID(roleID string) bool {
	return uuid.Validate(roleID) != nil
}

// FindRoleByName looks up a role by tenant and name. Absent is (nil, nil).
func (r *RoleRepository) FindRoleByName(ctx context.Context, tenantID, name string) (*roles.Role, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, permissions, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND name = $2
	`, tenantID, name)
	return scanRole(row, "find role by name")
}

// FindRoleByID looks up a role by id, scoped to a tenant. A role under a
// different tenant is absent, same as a missing id.
func (r *RoleRepository) FindRoleByID(ctx context.Context, roleID, tenantID string) (*roles.Role, error) {
	if malformedRoleID(roleID) {
		return nil, nil
	}
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, permissions, created_at, updated_at
		FROM roles
		WHERE id = $1 AND tenant_id = $2
	`, roleID, tenantID)
	return scanRole(row, "find role by id")
}

// ListRolesByTenant returns a tenant's roles, newest-created-first.
func (r *RoleRepository) ListRolesByTenant(ctx context.Context, tenantID string) ([]*roles.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, permissions, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, storeErr("list roles", err)
	}
	defer rows.Close()
	return collectRoles(rows, "list roles")
}

// InsertRole persists a new role, assigning its id and timestamps. A race
// on (tenant_id, name) surfaces as roles.ErrDuplicateRoleName.
func (r *RoleRepository) InsertRole(ctx context.Context, role *roles.Role) (*roles.Role, error) {
	now := time.Now().UTC()
	created := *role
	created.ID = id.New()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Permissions == nil {
		created.Permissions = []string{}
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO roles (id, tenant_id, name, description, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, created.ID, created.TenantID, created.Name, created.Description, created.Permissions, created.CreatedAt, created.UpdatedAt)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return nil, roles.ErrDuplicateRoleName
		}
		return nil, storeErr("insert role", err)
	}
	return &created, nil
}

// UpdateRole applies a partial update and returns the updated row.
func (r *RoleRepository) UpdateRole(ctx context.Context, roleID string, patch roles.RolePatch) (*roles.Role, error) {
	if malformedRoleID(roleID) {
		return nil, nil
	}
	set := "updated_at = $2"
	args := []any{roleID, time.Now().UTC()}

	if patch.Name != nil {
		args = append(args, *patch.Name)
		set += fmt.Sprintf(", name = $%d", len(args))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		set += fmt.Sprintf(", description = $%d", len(args))
	}
	if patch.Permissions != nil {
		args = append(args, patch.Permissions)
		set += fmt.Sprintf(", permissions = $%d", len(args))
	}

	row := r.db.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE roles SET %s
		WHERE id = $1
		RETURNING id, tenant_id, name, description, permissions, created_at, updated_at
	`, set), args...)

	// role == nil: the row vanished between the service's lookup and this
	// update; the service maps that back to not-found. A rename racing
	// into a taken name comes back as roles.ErrDuplicateRoleName from
	// scanRole.
	return scanRole(row, "update role")
}

// DeleteRole removes a role. The RESTRICT reference from assignments
// surfaces as roles.ErrRoleInUse when a grant slipped in concurrently.
func (r *RoleRepository) DeleteRole(ctx context.Context, roleID string) error {
	if malformedRoleID(roleID) {
		return nil
	}
	_, err := r.db.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return roles.ErrRoleInUse
		}
		return storeErr("delete role", err)
	}
	return nil
}

// CountAssignmentsForRole counts the assignments referencing a role.
func (r *RoleRepository) CountAssignmentsForRole(ctx context.Context, roleID string) (int, error) {
	if malformedRoleID(roleID) {
		return 0, nil
	}
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_role_assignments WHERE role_id = $1
	`, roleID).Scan(&count)
	if err != nil {
		return 0, storeErr("count assignments", err)
	}
	return count, nil
}

// AssignmentExists reports whether the (user, role) pair is present.
func (r *RoleRepository) AssignmentExists(ctx context.Context, userID, roleID string) (bool, error) {
	if malformedRoleID(roleID) {
		return false, nil
	}
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_role_assignments WHERE user_id = $1 AND role_id = $2
		)
	`, userID, roleID).Scan(&exists)
	if err != nil {
		return false, storeErr("check assignment", err)
	}
	return exists, nil
}

// InsertAssignment grants a role to a user. The primary key backstops a
// concurrent duplicate grant as roles.ErrAlreadyAssigned; the foreign key
// backstops the role being deleted between the service's lookup and the
// grant, as roles.ErrRoleNotFound.
func (r *RoleRepository) InsertAssignment(ctx context.Context, assignment *roles.Assignment) error {
	if malformedRoleID(assignment.RoleID) {
		return roles.ErrRoleNotFound
	}
	grantedAt := time.Now().UTC()
	var grantedBy *string
	if assignment.GrantedBy != "" {
		grantedBy = &assignment.GrantedBy
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO user_role_assignments (user_id, role_id, granted_at, granted_by)
		VALUES ($1, $2, $3, $4)
	`, assignment.UserID, assignment.RoleID, grantedAt, grantedBy)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return roles.ErrAlreadyAssigned
		}
		if isPgErr(err, pgForeignKeyViolation) {
			return roles.ErrRoleNotFound
		}
		return storeErr("insert assignment", err)
	}
	assignment.GrantedAt = grantedAt
	return nil
}

// DeleteAssignment revokes a grant. Zero rows affected means the pair was
// not assigned.
func (r *RoleRepository) DeleteAssignment(ctx context.Context, userID, roleID string) error {
	if malformedRoleID(roleID) {
		return roles.ErrNotAssigned
	}
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_role_assignments WHERE user_id = $1 AND role_id = $2
	`, userID, roleID)
	if err != nil {
		return storeErr("delete assignment", err)
	}
	if result.RowsAffected() == 0 {
		return roles.ErrNotAssigned
	}
	return nil
}

// ListRolesForUser returns the roles assigned to a user that belong to
// the tenant, newest-granted-first.
func (r *RoleRepository) ListRolesForUser(ctx context.Context, userID, tenantID string) ([]*roles.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT r.id, r.tenant_id, r.name, r.description, r.permissions, r.created_at, r.updated_at
		FROM roles r
		JOIN user_role_assignments a ON a.role_id = r.id
		WHERE a.user_id = $1 AND r.tenant_id = $2
		ORDER BY a.granted_at DESC
	`, userID, tenantID)
	if err != nil {
		return nil, storeErr("list user roles", err)
	}
	defer rows.Close()
	return collectRoles(rows, "list user roles")
}

// scanRole maps a single-row result onto the Repository contract: no row
// and an id that failed the UUID cast are both absent, a uniqueness
// violation is the duplicate-name domain error, and every other failure
// is wrapped in roles.ErrStoreUnavailable.
func scanRole(row pgx.Row, op string) (*roles.Role, error) {
	var role roles.Role
	err := row.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isPgErr(err, pgInvalidTextRep) {
			return nil, nil
		}
		if isPgErr(err, pgUniqueViolation) {
			return nil, roles.ErrDuplicateRoleName
		}
		return nil, storeErr(op, err)
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return &role, nil
}

func collectRoles(rows pgx.Rows, op string) ([]*roles.Role, error) {
	var out []*roles.Role
	for rows.Next() {
		var role roles.Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, storeErr(op, err)
		}
		if role.Permissions == nil {
			role.Permissions = []string{}
		}
		out = append(out, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return out, nil
}

func isPgErr(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
