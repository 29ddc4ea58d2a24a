package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey struct{}

// WithRole stores the caller's role in ctx.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKey{}, role)
}

// RoleFromContext returns the caller's role, or "" for anonymous callers.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxKey{}).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == RoleAdmin
}

// Middleware resolves an optional bearer token (or ?token= query parameter)
// into the request context. Requests without a token pass through anonymously;
// a token that fails validation is rejected with 401.
func Middleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := s.Parse(tokenStr)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), claims.Role)))
		})
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			writeDetail(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
