package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a middleware allowing browser calls from origins. With no
// origins it passes requests through untouched.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", APIKeyHeader, CorrelationHeader, "Mcp-Session-Id"},
		ExposedHeaders:   []string{CorrelationHeader, "Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
