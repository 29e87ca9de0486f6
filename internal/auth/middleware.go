package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
)

// contextKey is unexported so no other package can read or shadow the
// acting user stored in a request context.
type contextKey string

const userKey contextKey = "user"

// CookieName is the HttpOnly cookie the GitHub callback stores the token in.
const CookieName = "token"

// IdentityResolver maps a verified email claim to the stored user. It fails
// with an error wrapping apperror.ErrUnauthenticated when no user has that
// email.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*model.User, error)
}

// RequireAuth authenticates every request on the routes it wraps.
//
// The token comes from "Authorization: Bearer <token>" or, failing that, the
// "token" cookie. It must verify and must not be expired. The email claim
// is then resolved to a user once, and that user is what handlers act as;
// the token's role claim is never used for authorization.
//
// Any failure stops the chain with 401.
func RequireAuth(tokens *TokenService, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				unauthorized(w, logger, "valid authentication required")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w, logger, "invalid token")
				return
			}
			if claims.expired(tokens.now()) {
				unauthorized(w, logger, ErrExpired.Error())
				return
			}

			user, err := resolver.Resolve(r.Context(), claims.Email)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthenticated) {
					unauthorized(w, logger, "acting identity not found")
					return
				}
				logger.Error("resolving identity", "email", claims.Email, "error", err)
				writeJSON(w, logger, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole lets the request through only when the acting user has role.
// It must run after RequireAuth.
func RequireRole(role model.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w, logger, "valid authentication required")
				return
			}
			if user.Role != role {
				writeJSON(w, logger, http.StatusForbidden, "forbidden", "requires role "+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying the acting user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user RequireAuth resolved for this request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, msg string) {
	writeJSON(w, logger, http.StatusUnauthorized, "unauthorized", msg)
}

// writeJSON mirrors the handler package's error shape. The status is already
// on the wire when Encode runs, so a failure can only be logged.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": msg}); err != nil {
		logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
