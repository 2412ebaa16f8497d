package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// NewCORSMiddleware は読み取り専用API（/api/*）向けのCORSミドルウェアを返す。
// allowedOriginはカンマ区切りで複数指定でき、"*" は全オリジンを許可する。
// 公開データのみを返すためcredentialsは許可しない。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(allowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
