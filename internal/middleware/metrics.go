package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hayart/web/internal/metrics"
)

// unmatchedRoute はどのルートにも一致しなかったリクエストのラベル。
// パスをそのままラベルにすると系列数が際限なく増えるため集約する。
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware はchiのルートパターンとステータスコードをPrometheusに記録するミドルウェアを返す。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			collector.RecordHTTPRequest(route, rec.statusCode)
		})
	}
}
