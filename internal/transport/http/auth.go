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
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rolegate/rolegate/internal/rbac"
)

var errInvalidToken = errors.New("invalid token")

// TokenVerifier turns a signed bearer token into an rbac.User. Issuing
// tokens is the upstream identity provider's job; the claims carry the
// user's type, its pre-flattened permission set, its role names, and any
// identity attributes, including whatever field the configuration
// declares as the tenant id.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for HS256-signed tokens.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates the token and builds the identity the
// engine decides over.
func (v *TokenVerifier) Verify(tokenString string) (*rbac.User, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", errInvalidToken)
	}

	userType, _ := claims["user_type"].(string)

	user := &rbac.User{
		ID:                sub,
		Type:              rbac.ParseUserType(userType),
		Attributes:        map[string]string{},
		DirectPermissions: stringSlice(claims["permissions"]),
	}

	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, raw := range rawRoles {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			if name == "" {
				continue
			}
			user.Roles = append(user.Roles, rbac.UserRole{
				Name:        name,
				Permissions: stringSlice(m["permissions"]),
			})
		}
	}

	// Remaining string-valued claims become identity attributes, so the
	// configured tenant field travels with the token without this layer
	// knowing its name.
	for key, value := range claims {
		switch key {
		case "sub", "user_type", "permissions", "roles", "iss", "aud", "exp", "nbf", "iat", "jti":
			continue
		}
		if s, ok := value.(string); ok {
			user.Attributes[key] = s
		}
	}

	return user, nil
}

func stringSlice(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
