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

package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rolegate/rolegate/internal/observability/logger"
	"github.com/rolegate/rolegate/internal/rbac"
)

// Service orchestrates role CRUD and user-role assignment. It validates
// inputs against the permission catalog before touching the store and is
// the sole writer of role and assignment records.
type Service struct {
	repo     Repository
	catalog  *rbac.Catalog
	validate *validator.Validate
}

// NewService creates a new role service over a repository and the
// process-wide permission catalog.
func NewService(repo Repository, catalog *rbac.Catalog) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		validate: validator.New(),
	}
}

// CreateRole validates and persists a new role in a tenant.
// Fails with InvalidPermissionsError when any permission is unknown (the
// whole call fails, partial validity is not accepted), with
// ErrDuplicateRoleName when the name is taken within the tenant.
func (s *Service) CreateRole(ctx context.Context, tenantID, actor string, input CreateRoleInput) (*Role, error) {
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	valid, err := s.validatePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindRoleByName(ctx, tenantID, input.Name); err != nil {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	} else if existing != nil {
		return nil, ErrDuplicateRoleName
	}

	role := &Role{
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		Permissions: valid,
	}

	// The store's (tenant_id, name) uniqueness constraint is the backstop
	// for creates racing past the check above: one winner, one duplicate.
	created, err := s.repo.InsertRole(ctx, role)
	if err != nil {
		if errors.Is(err, ErrDuplicateRoleName) {
			return nil, ErrDuplicateRoleName
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	slog.InfoContext(ctx, "role_created",
		logger.TenantID(tenantID),
		logger.RoleID(created.ID),
		logger.RoleName(created.Name),
		logger.Actor(actor),
	)
	return created, nil
}

// GetRolesByTenant lists a tenant's roles, newest-created-first.
func (s *Service) GetRolesByTenant(ctx context.Context, tenantID string) ([]*Role, error) {
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	list, err := s.repo.ListRolesByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return list, nil
}

// GetRoleByID retrieves a role scoped to a tenant. A role that exists
// under another tenant behaves exactly like a non-existent one.
func (s *Service) GetRoleByID(ctx context.Context, roleID, tenantID string) (*Role, error) {
	role, err := s.findRole(ctx, roleID, tenantID)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateRole applies a partial update to a role. Permissions, when
// supplied, are re-validated in full; a rename re-checks tenant-scoped
// uniqueness excluding the role itself.
func (s *Service) UpdateRole(ctx context.Context, roleID, tenantID, actor string, input UpdateRoleInput) (*Role, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.findRole(ctx, roleID, tenantID)
	if err != nil {
		return nil, err
	}

	patch := RolePatch{
		Name:        input.Name,
		Description: input.Description,
	}

	if input.Permissions != nil {
		valid, err := s.validatePermissions(input.Permissions)
		if err != nil {
			return nil, err
		}
		patch.Permissions = valid
	}

	if input.Name != nil && *input.Name != current.Name {
		other, err := s.repo.FindRoleByName(ctx, tenantID, *input.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check role name: %w", err)
		}
		if other != nil && other.ID != roleID {
			return nil, ErrDuplicateRoleName
		}
	}

	updated, err := s.repo.UpdateRole(ctx, roleID, patch)
	if err != nil {
		if errors.Is(err, ErrDuplicateRoleName) {
			return nil, ErrDuplicateRoleName
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	if updated == nil {
		return nil, ErrRoleNotFound
	}

	slog.InfoContext(ctx, "role_updated",
		logger.TenantID(tenantID),
		logger.RoleID(roleID),
		logger.Actor(actor),
	)
	return updated, nil
}

// DeleteRole removes a role. Deletion is blocked with ErrRoleInUse while
// any assignment references the role, so users never lose permissions
// silently.
func (s *Service) DeleteRole(ctx context.Context, roleID, tenantID, actor string) error {
	role, err := s.findRole(ctx, roleID, tenantID)
	if err != nil {
		return err
	}

	count, err := s.repo.CountAssignmentsForRole(ctx, roleID)
	if err != nil {
		return fmt.Errorf("failed to count assignments: %w", err)
	}
	if count > 0 {
		return ErrRoleInUse
	}

	// RESTRICT on the assignment reference backstops a grant racing the
	// count above.
	if err := s.repo.DeleteRole(ctx, roleID); err != nil {
		if errors.Is(err, ErrRoleInUse) {
			return ErrRoleInUse
		}
		return fmt.Errorf("failed to delete role: %w", err)
	}

	slog.InfoContext(ctx, "role_deleted",
		logger.TenantID(tenantID),
		logger.RoleID(roleID),
		logger.RoleName(role.Name),
		logger.Actor(actor),
	)
	return nil
}

// AssignRoleToUser grants a tenant's role to a user. Redundant grants are
// rejected with ErrAlreadyAssigned rather than ignored.
func (s *Service) AssignRoleToUser(ctx context.Context, userID, roleID, tenantID, actor string) error {
	if userID == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if _, err := s.findRole(ctx, roleID, tenantID); err != nil {
		return err
	}

	exists, err := s.repo.AssignmentExists(ctx, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if exists {
		return ErrAlreadyAssigned
	}

	assignment := &Assignment{
		UserID:    userID,
		RoleID:    roleID,
		GrantedBy: actor,
	}
	if err := s.repo.InsertAssignment(ctx, assignment); err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			return ErrAlreadyAssigned
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}

	slog.InfoContext(ctx, "role_assigned",
		logger.TenantID(tenantID),
		logger.RoleID(roleID),
		logger.UserID(userID),
		logger.Actor(actor),
	)
	return nil
}

// RemoveRoleFromUser revokes a tenant's role from a user. Revoking an
// absent assignment is rejected with ErrNotAssigned.
func (s *Service) RemoveRoleFromUser(ctx context.Context, userID, roleID, tenantID, actor string) error {
	if userID == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if _, err := s.findRole(ctx, roleID, tenantID); err != nil {
		return err
	}

	if err := s.repo.DeleteAssignment(ctx, userID, roleID); err != nil {
		if errors.Is(err, ErrNotAssigned) {
			return ErrNotAssigned
		}
		return fmt.Errorf("failed to remove role: %w", err)
	}

	slog.InfoContext(ctx, "role_removed",
		logger.TenantID(tenantID),
		logger.RoleID(roleID),
		logger.UserID(userID),
		logger.Actor(actor),
	)
	return nil
}

// GetUserRoles lists the roles assigned to a user within a tenant.
func (s *Service) GetUserRoles(ctx context.Context, userID, tenantID string) ([]*Role, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	list, err := s.repo.ListRolesForUser(ctx, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	return list, nil
}

// findRole is the tenant-scoped lookup every mutating operation goes
// through. Absence and wrong-tenant both come back as ErrRoleNotFound.
func (s *Service) findRole(ctx context.Context, roleID, tenantID string) (*Role, error) {
	if roleID == "" {
		return nil, &ValidationError{Field: "role_id", Reason: "is required"}
	}
	if tenantID == "" {
		return nil, &ValidationError{Field: "tenant_id", Reason: "is required"}
	}
	role, err := s.repo.FindRoleByID(ctx, roleID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// validatePermissions checks every identifier against the catalog.
// All-or-nothing: one unknown identifier fails the whole call, and the
// error lists every offender.
func (s *Service) validatePermissions(shortNames []string) ([]string, error) {
	valid, invalid := s.catalog.ValidateMany(shortNames)
	if len(invalid) > 0 {
		return nil, &InvalidPermissionsError{Permissions: invalid}
	}
	if valid == nil {
		valid = []string{}
	}
	return valid, nil
}

// validateInput runs struct-tag validation and converts the first failure
// into a field-naming ValidationError.
func (s *Service) validateInput(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := "is invalid"
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "max":
			reason = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "min":
			reason = fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return &ValidationError{Field: snakeCase(fe.Field()), Reason: reason}
	}
	return &ValidationError{Field: "input", Reason: "is invalid"}
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
