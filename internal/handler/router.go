package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hayart/web/internal/feed"
	"github.com/hayart/web/internal/metrics"
	"github.com/hayart/web/internal/middleware"
	"github.com/hayart/web/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// コンテンツ
	EventService EventServiceInterface
	PostService  PostServiceInterface
	PageService  PageServiceInterface
	SiteService  SiteServiceInterface
	Sanitizer    security.ContentSanitizer

	// 画像
	ImageProxy     ImageProxyInterface
	OGImageService OGImageServiceInterface

	// ヘルスチェック
	Health HealthStatusProvider

	// サイト
	BaseURL  string
	Location *time.Location
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Recovery → Logging → Metrics → SecurityHeaders → RateLimit
//
// /health と /metrics はレート制限の外に配置する。/api/* にのみCORSを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())

	pageHandler := NewPageHandler(
		deps.EventService, deps.PostService, deps.PageService, deps.SiteService,
		deps.Sanitizer,
		PageHandlerConfig{
			BaseURL:  deps.BaseURL,
			Location: deps.Location,
			OGImages: deps.OGImageService != nil && deps.OGImageService.Enabled(),
		},
	)
	apiHandler := NewAPIHandler(deps.EventService, deps.Health)
	exportHandler := NewExportHandler(deps.EventService, deps.PostService, deps.SiteService, deps.BaseURL, deps.Location)

	// --- レート制限の対象外 ---
	r.Get("/health", apiHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		// JSON API
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
			r.Get("/calendar", apiHandler.Calendar)
		})

		// 画像プロキシ
		if deps.ImageProxy != nil {
			r.Get("/_img", NewImageHandler(deps.ImageProxy, deps.Metrics).Proxy)
		}

		// プレビュー画像
		if deps.OGImageService != nil {
			og := NewOGImageHandler(deps.OGImageService, deps.EventService, deps.PostService, deps.PageService, deps.SiteService, deps.Location)
			r.Get("/opengraph-image.png", og.Home)
			r.Get("/blog/opengraph-image.png", og.BlogIndex)
			r.Get("/blog/{slug}/opengraph-image.png", og.Post)
			r.Get("/event/{slug}/opengraph-image.png", og.Event)
			r.Get("/{slug}/opengraph-image.png", og.Page)
		}

		// 書き出し
		r.Get(feed.Path, exportHandler.RSS)
		r.Get("/event/calendar.ics", exportHandler.CalendarICS)
		r.Get("/event/{slug}/calendar.ics", exportHandler.EventICS)

		// HTMLページ
		r.Get("/", pageHandler.Home)
		r.Get("/blog", pageHandler.BlogIndex)
		r.Get("/blog/{slug}", pageHandler.Post)
		r.Get("/event", pageHandler.EventIndex)
		r.Get("/event/{slug}", pageHandler.Event)
		r.Get("/{slug}", pageHandler.Page)
	})

	r.NotFound(pageHandler.NotFound)

	return r
}
