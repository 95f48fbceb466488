package middleware

import (
	"net/http"

	"github.com/qalicha-dev28/boutique-pos/pkg/correlationid"
)

// CorrelationID reads the inbound correlation ID header, generating one when
// absent, and makes it available on the request context and the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = correlationid.Generate()
			}

			ctx := correlationid.NewContext(r.Context(), id)
			w.Header().Set(correlationid.Header, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
