package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader はリクエストIDを受け渡すHTTPヘッダー名。
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength を超える受信IDは採用せず新たに発行する。
const maxRequestIDLength = 128

type contextKey string

const requestIDContextKey contextKey = "request_id"

// NewRequestIDMiddleware はリクエストIDをコンテキストとレスポンスヘッダーに設定するミドルウェアを返す。
// 受信リクエストにX-Request-IDがあればそれを引き継ぎ、なければUUID v4を発行する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はコンテキストからリクエストIDを取得する。
// 設定されていない場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
