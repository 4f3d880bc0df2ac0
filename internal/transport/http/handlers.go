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
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rolegate/rolegate/internal/observability/metrics"
	"github.com/rolegate/rolegate/internal/rbac"
	"github.com/rolegate/rolegate/internal/roles"
)

// Handler holds HTTP handlers and dependencies. The transport layer is a
// thin adapter: identity comes in through the auth middleware, decisions
// come from the engine, everything else is the role service's business.
type Handler struct {
	engine      *rbac.Engine
	catalog     *rbac.Catalog
	roleService *roles.Service
	tokens      *TokenVerifier
	rbacMetrics *metrics.RBACMetrics
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	engine *rbac.Engine,
	catalog *rbac.Catalog,
	roleService *roles.Service,
	tokens *TokenVerifier,
	rbacMetrics *metrics.RBACMetrics,
) *Handler {
	return &Handler{
		engine:      engine,
		catalog:     catalog,
		roleService: roleService,
		tokens:      tokens,
		rbacMetrics: rbacMetrics,
	}
}

// Routes builds the router.
func (h *Handler) Routes(rl *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RateLimitMiddleware(rl))
	r.Use(LoggingMiddleware())

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		// roles.manage implies read access: writes require it, reads take
		// either it or roles.view.
		canView := h.RequireAnyPermission("roles.view", "roles.manage")
		canManage := h.RequirePermission("roles.manage")

		r.Route("/permissions", func(r chi.Router) {
			r.With(canView).Get("/", h.ListPermissions)
			r.With(canView).Get("/{module}", h.ListModulePermissions)
		})

		r.Get("/me/permissions", h.MyPermissions)

		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Route("/roles", func(r chi.Router) {
				r.With(canView).Get("/", h.ListRoles)
				r.With(canManage).Post("/", h.CreateRole)
				r.With(canView).Get("/{roleID}", h.GetRole)
				r.With(canManage).Patch("/{roleID}", h.UpdateRole)
				r.With(canManage).Delete("/{roleID}", h.DeleteRole)
			})

			r.Route("/users/{userID}/roles", func(r chi.Router) {
				r.With(canView).Get("/", h.ListUserRoles)
				r.With(canManage).Post("/{roleID}", h.AssignRole)
				r.With(canManage).Delete("/{roleID}", h.RemoveRole)
			})
		})
	})

	return otelhttp.NewHandler(r, "rolegate")
}

// Health reports liveness.
// @Summary Health check
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto status codes. Not-found
// deliberately says nothing about whether the role exists in another
// tenant.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *roles.ValidationError
	var perr *roles.InvalidPermissionsError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":               "invalid permissions",
			"invalid_permissions": perr.Permissions,
		})
	case errors.Is(err, roles.ErrRoleNotFound):
		respondError(w, http.StatusNotFound, "role not found")
	case errors.Is(err, roles.ErrDuplicateRoleName):
		respondError(w, http.StatusConflict, "a role with this name already exists")
	case errors.Is(err, roles.ErrRoleInUse):
		respondError(w, http.StatusConflict, "role is assigned to users and cannot be deleted")
	case errors.Is(err, roles.ErrAlreadyAssigned):
		respondError(w, http.StatusConflict, "role already assigned")
	case errors.Is(err, roles.ErrNotAssigned):
		respondError(w, http.StatusConflict, "role not assigned")
	case errors.Is(err, roles.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "store unavailable, retry later")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
