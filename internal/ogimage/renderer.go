package ogimage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/hayart/web/internal/metrics"
)

// DefaultTimeout はスクリーンショット1枚あたりの既定の制限時間。
const DefaultTimeout = 20 * time.Second

// ErrDisabled はプレビュー画像の生成が無効化されていることを示す。
var ErrDisabled = errors.New("og image rendering is disabled")

// Renderer はHTML文書をPNG画像に変換する。
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer はヘッドレスChromiumでHTMLをスクリーンショットするRenderer。
// ブラウザプロセスは最初の描画時に起動し、Closeまで使い回す。描画ごとに新しいタブを開く。
type ChromeRenderer struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
}

// NewChromeRenderer はChromeRendererを生成する。timeoutが0以下の場合は DefaultTimeout。
func NewChromeRenderer(timeout time.Duration, opts ...chromedp.ExecAllocatorOption) *ChromeRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(Width, Height),
	)
	allocOpts = append(allocOpts, opts...)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &ChromeRenderer{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     timeout,
	}
}

// Render はHTML文書をdata URLとして開き、描画完了（data-ready="true"）を待ってPNGを撮る。
// ctxがキャンセルされるとタブを閉じて中断する。
func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	dataURL := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(Width, Height),
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, fmt.Errorf("スクリーンショットの取得に失敗しました: %w", err)
	}
	return png, nil
}

// Close はブラウザプロセスを終了する。
func (r *ChromeRenderer) Close() {
	r.cancelAlloc()
}

// Service はカードからプレビュー画像を生成する。
type Service struct {
	renderer Renderer
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	enabled  bool
}

// NewService はServiceを生成する。enabledがfalseの場合、Renderは常に ErrDisabled を返す。
// collectorはnilでもよい。
func NewService(renderer Renderer, collector metrics.MetricsCollector, logger *slog.Logger, enabled bool) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		renderer: renderer,
		metrics:  collector,
		logger:   logger,
		enabled:  enabled && renderer != nil,
	}
}

// Enabled はプレビュー画像の生成が有効かどうかを返す。
func (s *Service) Enabled() bool {
	return s.enabled
}

// Render はカードをPNG画像にする。
func (s *Service) Render(ctx context.Context, card Card) ([]byte, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}

	html, err := card.HTML()
	if err != nil {
		s.record(metrics.ResultFailure)
		return nil, err
	}

	png, err := s.renderer.Render(ctx, html)
	if err != nil {
		s.record(metrics.ResultFailure)
		s.logger.Error("OG画像の生成に失敗しました",
			slog.String("title", card.Title),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.record(metrics.ResultSuccess)
	return png, nil
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordOGImage(result)
	}
}
