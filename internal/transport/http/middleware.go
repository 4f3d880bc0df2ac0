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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rolegate/rolegate/internal/observability/logger"
)

// Authorization layering:
//   - AuthMiddleware only transports identity: token in, rbac.User in
//     context. No token means no user, never an early 401; public
//     routes share the chain.
//   - RequirePermission middleware is the single gate. It maps "no user"
//     to 401 and an engine deny to 403; handlers behind it never
//     re-check.
//   - Tenant context comes from the URL, not from headers the caller can
//     forge independently of their token.

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware parses the bearer token, if any, into an rbac.User on
// the context. It never rejects: an absent or invalid token simply leaves
// the request unauthenticated for the permission gates downstream.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.tokens.Verify(token)
		if err != nil {
			slog.DebugContext(r.Context(), "token_rejected", logger.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequirePermission gates a route on a single permission, scoped to the
// tenant in the URL when present.
func (h *Handler) RequirePermission(shortName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			tenantID := chi.URLParam(r, "tenantID")
			allowed := h.engine.Decide(user, shortName, tenantID)
			h.rbacMetrics.RecordDecision(r.Context(), allowed)
			if !allowed {
				slog.InfoContext(r.Context(), "access_denied",
					logger.UserID(user.ID),
					logger.TenantID(tenantID),
					logger.Permission(shortName),
				)
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission gates a route on holding at least one of the
// permissions.
func (h *Handler) RequireAnyPermission(shortNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			tenantID := chi.URLParam(r, "tenantID")
			allowed := h.engine.DecideAny(user, shortNames, tenantID)
			h.rbacMetrics.RecordDecision(r.Context(), allowed)
			if !allowed {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
