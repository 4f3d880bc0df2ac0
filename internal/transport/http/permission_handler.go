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
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListPermissions returns the whole catalog grouped by module, in
// declaration order.
// @Summary List Permissions
// @Tags Permissions
// @Produce json
// @Success 200 {array} map[string]any
// @Router /permissions [get]
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	modules := h.catalog.Modules()
	out := make([]map[string]any, 0, len(modules))
	for _, module := range modules {
		out = append(out, map[string]any{
			"module":      module,
			"permissions": h.catalog.ByModule(module),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// ListModulePermissions returns one module's permissions. Unknown modules
// yield an empty list, not an error.
// @Summary List Module Permissions
// @Tags Permissions
// @Produce json
// @Param module path string true "Module key"
// @Success 200 {array} rbac.Permission
// @Router /permissions/{module} [get]
func (h *Handler) ListModulePermissions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.ByModule(chi.URLParam(r, "module")))
}

// MyPermissions reports the caller's effective permission set.
// @Summary My Permissions
// @Tags Permissions
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /me/permissions [get]
func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	perms := h.engine.EffectivePermissions(user)
	if perms == nil {
		perms = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     user.ID,
		"user_type":   user.Type,
		"permissions": perms,
	})
}
