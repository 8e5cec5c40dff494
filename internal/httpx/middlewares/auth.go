// Package middlewares holds the HTTP middleware chain pieces: bearer-token
// authentication and Prometheus request metrics.
package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// ContextKeyIdentity carries the authenticated Identity through the request
// context. Extract it with IdentityFromContext.
const ContextKeyIdentity contextKey = "identity"

// Role is the caller's position in the shop: customers buy, carriers
// deliver, the owner administers.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCarrier  Role = "carrier"
	RoleOwner    Role = "owner"
)

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	ID   int64
	Role Role
}

// IdentityFromContext returns the Identity placed by Authenticate. The
// comma-ok result is false on unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(Identity)
	return id, ok
}

// Authenticate validates the Authorization bearer token and attaches the
// caller's Identity to the request context. Tokens carry the numeric subject
// in "sub" and the role in "role".
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				unauthorized(w, "missing bearer token")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid claims")
				return
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				unauthorized(w, "missing subject")
				return
			}
			role, ok := claims["role"].(string)
			if !ok {
				unauthorized(w, "missing role")
				return
			}

			identity := Identity{ID: int64(sub), Role: Role(role)}
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose authenticated identity does not carry
// one of the given roles. It must run after Authenticate.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				unauthorized(w, "not authenticated")
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + msg + `"}`))
}

// IssueToken mints a signed token for the given identity. The server does
// not expose a login flow; grocerctl uses this to hand out tokens for
// development and the owner's tooling.
func IssueToken(secret string, identity Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  identity.ID,
		"role": string(identity.Role),
	})
	return token.SignedString([]byte(secret))
}
