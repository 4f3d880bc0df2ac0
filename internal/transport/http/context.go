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
	"context"

	"github.com/rolegate/rolegate/internal/rbac"
)

type contextKey string

const userKey contextKey = "rbac_user"

// WithUser attaches the authenticated identity to the request context.
func WithUser(ctx context.Context, u *rbac.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// GetUser retrieves the authenticated identity from context. Nil when the
// request carried no valid token. The engine treats nil as deny, and the
// gating middleware maps it to unauthenticated.
func GetUser(ctx context.Context) *rbac.User {
	if u, ok := ctx.Value(userKey).(*rbac.User); ok {
		return u
	}
	return nil
}
