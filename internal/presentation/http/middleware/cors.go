package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/config"
)

// headers the register front end cannot work without
var registerHeaders = []string{"Authorization", "Content-Type", "X-Request-ID", IdempotencyKeyHeader}

// CORSMiddleware lets the register's browser front end call the API. Unset
// lists fall back to the local till UI.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	}

	headers := append([]string{"Accept", "Origin"}, cfg.AllowedHeaders...)
	for _, h := range registerHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Idempotency-Replayed"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
}
