package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/config"
	"github.com/hayart/web/internal/event"
	"github.com/hayart/web/internal/handler"
	"github.com/hayart/web/internal/logger"
	"github.com/hayart/web/internal/metrics"
	"github.com/hayart/web/internal/middleware"
	"github.com/hayart/web/internal/ogimage"
	"github.com/hayart/web/internal/page"
	"github.com/hayart/web/internal/post"
	"github.com/hayart/web/internal/repository"
	"github.com/hayart/web/internal/security"
	"github.com/hayart/web/internal/site"
	"github.com/hayart/web/internal/worker/probe"
)

// shutdownTimeout はグレースフルシャットダウンで処理中のリクエストを待つ上限。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでロガーを再設定する
	logger.SetupDefaultWithLevel(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// カレントディレクトリの .env を環境変数に読み込んだうえで、
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.SiteBaseURL),
		slog.String("cms", cfg.CMSGraphQLURL),
		slog.String("timezone", cfg.SiteTimezone),
	)

	return runServe(cfg)
}

// loadDotEnv は.envファイルがあれば読み込む。既に設定済みの環境変数は上書きしない。
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// server はワイヤリング済みのHTTPハンドラーと、停止時に解放するリソースを保持する。
type server struct {
	handler http.Handler
	closers []func()
}

// Close は登録順と逆順にリソースを解放する。
func (s *server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// newServer は設定から全依存関係をワイヤリングしてHTTPハンドラーを組み立てる。
// CMSヘルスプローブはctxがキャンセルされるまで動作する。
func newServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*server, error) {
	srv := &server{}

	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 2. CMSクライアント
	client := cms.New(cfg.CMSGraphQLURL,
		cms.WithTimeout(cfg.CMSTimeout),
		cms.WithRetry(cfg.CMSMaxRetries, cfg.CMSRetryInitialInterval),
		cms.WithLogger(log),
		cms.WithMetrics(collector),
	)

	// 3. リポジトリとドメインサービス
	eventService := event.NewService(repository.NewCMSEventRepo(client), cfg.SiteLocation)
	postService := post.NewService(repository.NewCMSPostRepo(client))
	pageService := page.NewService(repository.NewCMSPageRepo(client))
	siteService := site.NewService(repository.NewCMSSettingsRepo(client), repository.NewCMSSocialLinkRepo(client))

	// 4. 画像プロキシ
	var imageProxy handler.ImageProxyInterface
	guard, err := security.NewImageGuard(cfg.CMSGraphQLURL, cfg.CMSTimeout, cfg.ImageProxyMaxSize)
	if err != nil {
		log.Warn("image proxy disabled", slog.String("error", err.Error()))
	} else {
		imageProxy = guard
		log.Info("image proxy enabled", slog.String("max_size", humanize.IBytes(uint64(cfg.ImageProxyMaxSize))))
	}

	// 5. OG画像
	var renderer ogimage.Renderer
	if cfg.OGImageEnabled {
		chrome := ogimage.NewChromeRenderer(cfg.OGImageTimeout)
		srv.closers = append(srv.closers, chrome.Close)
		renderer = chrome
	}
	ogService := ogimage.NewService(renderer, collector, log, cfg.OGImageEnabled)

	// 6. CMSヘルスプローブ
	prober := probe.NewProber(client, collector, log, cfg.CMSTimeout)
	if err := probe.NewScheduler(prober, log).Start(ctx, cfg.CMSProbeSchedule); err != nil {
		srv.Close()
		return nil, fmt.Errorf("failed to start CMS probe: %w", err)
	}

	// 7. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitPerMinute))
	srv.closers = append(srv.closers, rateLimiter.Stop)

	srv.handler = handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		EventService: eventService,
		PostService:  postService,
		PageService:  pageService,
		SiteService:  siteService,
		Sanitizer:    security.NewContentSanitizer(),

		ImageProxy:     imageProxy,
		OGImageService: ogService,

		Health: prober,

		BaseURL:  cfg.SiteBaseURL,
		Location: cfg.SiteLocation,
	})

	return srv, nil
}

// runServe はWebサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := newServer(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer srv.Close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OGImageTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down web server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
