package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/qalicha-dev28/boutique-pos/internal/apperr"
	"github.com/qalicha-dev28/boutique-pos/internal/auth"
	"github.com/qalicha-dev28/boutique-pos/internal/http/apierr"
	"github.com/qalicha-dev28/boutique-pos/internal/model"
)

type claimsCtxKey struct{}

// ClaimsFromContext returns the verified claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(auth.Claims)
	return claims, ok
}

// Authenticate verifies the bearer token and attaches its claims to the
// request context. Requests without a valid token are rejected.
func Authenticate(tokenMaker *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, apierr.New(apperr.ErrMissingToken))
				return
			}

			claims, err := tokenMaker.Verify(token)
			if err != nil {
				writeAuthError(w, apierr.New(apperr.ErrInvalidToken))
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only callers whose role is in the given allow-list.
// It must run after Authenticate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, apierr.New(apperr.ErrMissingToken))
				return
			}

			if _, ok := allowed[claims.Role]; !ok {
				writeAuthError(w, apierr.New(apperr.ErrForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, res apierr.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
