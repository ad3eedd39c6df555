// Package requestid assigns each request a correlation ID so log lines and
// audit events emitted during one request can be tied back together.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"crosscheck/pkg/requestcontext"
)

// Header carries the request ID on responses (and inbound overrides).
const Header = "X-Request-Id"

// Middleware reuses an inbound X-Request-Id when present, otherwise mints a
// fresh UUID, stores it in the context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
