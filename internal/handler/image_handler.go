package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/hayart/web/internal/metrics"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/security"
)

// ImageHandler はCMSにアップロードされた画像を中継するHTTPハンドラー。
type ImageHandler struct {
	proxy   ImageProxyInterface
	metrics metrics.MetricsCollector
}

// NewImageHandler はImageHandlerを生成する。collectorはnilでもよい。
func NewImageHandler(proxy ImageProxyInterface, collector metrics.MetricsCollector) *ImageHandler {
	return &ImageHandler{
		proxy:   proxy,
		metrics: collector,
	}
}

// Proxy はurlパラメータの画像を取得して返す。CMSのアップロード領域以外のURLは403にする。
// GET /_img?url=...
func (h *ImageHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")

	u, err := h.proxy.Validate(raw)
	if err != nil {
		slog.WarnContext(r.Context(), "画像URLを拒否しました",
			slog.String("url", raw),
			slog.String("reason", err.Error()),
		)
		reason := "not an uploaded CMS image"
		if !errors.Is(err, security.ErrImageURLRejected) {
			reason = "invalid URL"
		}
		handleAPIError(w, r, model.NewInvalidImageURLError(reason))
		return
	}

	img, err := h.proxy.Fetch(r.Context(), u)
	if err != nil {
		slog.WarnContext(r.Context(), "画像の取得に失敗しました",
			slog.String("url", u.String()),
			slog.String("error", err.Error()),
		)
		handleAPIError(w, r, model.NewImageFetchFailedError())
		return
	}

	size := int64(len(img.Body))
	if h.metrics != nil {
		h.metrics.RecordImageProxyBytes(size)
	}
	slog.DebugContext(r.Context(), "画像を中継しました",
		slog.String("url", u.String()),
		slog.String("size", humanize.Bytes(uint64(size))),
	)

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.Write(img.Body)
}
