// Package requestmeta stamps each request with an ID and a fixed timestamp so
// every layer of a single request observes the same clock reading.
package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"shopfloor/pkg/requestcontext"
)

// HeaderRequestID is echoed back to callers for log correlation.
const HeaderRequestID = "X-Request-Id"

// Middleware injects a request ID (generated when the caller supplies none)
// and the request arrival time into the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
