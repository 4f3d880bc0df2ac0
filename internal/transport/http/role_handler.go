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

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rolegate/rolegate/internal/roles"
)

// CreateRole handles role creation.
// @Summary Create Role
// @Tags Roles
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param request body roles.CreateRoleInput true "Role Data"
// @Success 201 {object} roles.Role
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/roles [post]
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var input roles.CreateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.CreateRole(r.Context(), tenantID, actorID(r), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.rbacMetrics.RecordRoleMutation(r.Context(), "create")
	respondJSON(w, http.StatusCreated, role)
}

// ListRoles lists a tenant's roles, newest first.
// @Summary List Roles
// @Tags Roles
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} roles.Role
// @Router /tenants/{tenantID}/roles [get]
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.roleService.GetRolesByTenant(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []*roles.Role{}
	}
	respondJSON(w, http.StatusOK, list)
}

// GetRole retrieves one role within the tenant.
// @Summary Get Role
// @Tags Roles
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param roleID path string true "Role ID"
// @Success 200 {object} roles.Role
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/roles/{roleID} [get]
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roleService.GetRoleByID(r.Context(), chi.URLParam(r, "roleID"), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

// UpdateRole applies a partial update.
// @Summary Update Role
// @Tags Roles
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param roleID path string true "Role ID"
// @Param request body roles.UpdateRoleInput true "Fields to update"
// @Success 200 {object} roles.Role
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/roles/{roleID} [patch]
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var input roles.UpdateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.roleService.UpdateRole(r.Context(), chi.URLParam(r, "roleID"), chi.URLParam(r, "tenantID"), actorID(r), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.rbacMetrics.RecordRoleMutation(r.Context(), "update")
	respondJSON(w, http.StatusOK, role)
}

// DeleteRole removes an unassigned role.
// @Summary Delete Role
// @Tags Roles
// @Param tenantID path string true "Tenant ID"
// @Param roleID path string true "Role ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/roles/{roleID} [delete]
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	err := h.roleService.DeleteRole(r.Context(), chi.URLParam(r, "roleID"), chi.URLParam(r, "tenantID"), actorID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.rbacMetrics.RecordRoleMutation(r.Context(), "delete")
	w.WriteHeader(http.StatusNoContent)
}

// AssignRole grants a tenant's role to a user.
// @Summary Assign Role
// @Tags Assignments
// @Param tenantID path string true "Tenant ID"
// @Param userID path string true "User ID"
// @Param roleID path string true "Role ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/users/{userID}/roles/{roleID} [post]
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	err := h.roleService.AssignRoleToUser(r.Context(),
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "roleID"),
		chi.URLParam(r, "tenantID"),
		actorID(r),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.rbacMetrics.RecordRoleMutation(r.Context(), "assign")
	w.WriteHeader(http.StatusNoContent)
}

// RemoveRole revokes a role from a user.
// @Summary Remove Role
// @Tags Assignments
// @Param tenantID path string true "Tenant ID"
// @Param userID path string true "User ID"
// @Param roleID path string true "Role ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/users/{userID}/roles/{roleID} [delete]
func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	err := h.roleService.RemoveRoleFromUser(r.Context(),
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "roleID"),
		chi.URLParam(r, "tenantID"),
		actorID(r),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.rbacMetrics.RecordRoleMutation(r.Context(), "unassign")
	w.WriteHeader(http.StatusNoContent)
}

// ListUserRoles lists the roles a user holds in the tenant.
// @Summary List User Roles
// @Tags Assignments
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param userID path string true "User ID"
// @Success 200 {array} roles.Role
// @Router /tenants/{tenantID}/users/{userID}/roles [get]
func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.roleService.GetUserRoles(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []*roles.Role{}
	}
	respondJSON(w, http.StatusOK, list)
}

// actorID identifies who performs a mutation, for the service's logs.
// Permission gates run before every caller of this, so the user is set.
func actorID(r *http.Request) string {
	if u := GetUser(r.Context()); u != nil {
		return u.ID
	}
	return ""
}
