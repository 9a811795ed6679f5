package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser dashboards on the given origins to call the API.
// An empty list allows any origin without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID, "traceparent"},
		ExposedHeaders: []string{HeaderRequestID, "Retry-After"},
		MaxAge:         300,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}
