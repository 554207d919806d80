package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const requestIdHeader = "X-Request-Id"

type requestIdKeyType int

var requestIdKey requestIdKeyType

// RequestID attaches a request id to the context and the response.  An id
// supplied by the caller is kept so ids can be traced across services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}

		w.Header().Set(requestIdHeader, requestId)

		// Downstream handlers that only see the request, like the access
		// log adapter, read the id from the header.
		r.Header.Set(requestIdHeader, requestId)

		ctx := context.WithValue(r.Context(), requestIdKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id attached by the RequestID middleware
func GetRequestID(ctx context.Context) string {
	requestId, _ := ctx.Value(requestIdKey).(string)
	return requestId
}
