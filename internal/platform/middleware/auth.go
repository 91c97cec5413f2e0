package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "galang/pkg/domain"
	"galang/pkg/requestcontext"
)

// Claims is what the token validator hands back for an authenticated actor.
type Claims struct {
	UserID id.UserID
	Role   id.Role
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and places the
// actor's identity and role in context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := validator.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"error", err.Error(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth populates the actor's identity when a valid bearer token is
// present but never rejects. Used on public endpoints (donating, reporting)
// where signed-in users get attributed and visitors stay anonymous.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				if claims, err := validator.Validate(strings.TrimPrefix(header, "Bearer ")); err == nil {
					ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
					ctx = requestcontext.WithRole(ctx, claims.Role)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a subtree on the actor's role. Must run after RequireAuth.
func RequireRole(role id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.Role(r.Context()) != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
