package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticate requires a valid access token in the Authorization header.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Malformed Authorization header, expected: Bearer <token>")
				return
			}

			claims, err := utils.ValidateToken(parts[1], jwtSecret, utils.TokenTypeAccess)
			if err != nil {
				response.Unauthorized(w, "Token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets the request through when the token carries one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || claims.Role == "" {
				response.Unauthorized(w, "Token carries no role")
				return
			}

			for _, role := range roles {
				if strings.EqualFold(claims.Role, string(role)) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You are not allowed to access this resource")
		})
	}
}

func WithClaims(ctx context.Context, claims *model.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) *model.JWTClaims {
	claims, _ := ctx.Value(claimsKey).(*model.JWTClaims)
	return claims
}

func GetUserIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
