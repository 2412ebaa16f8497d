// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CMSリクエスト・OG画像生成の結果ラベル。
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNoData  = "not_found"
)

// MetricsCollector はメトリクス収集のインターフェース。
// CMSクライアント、ミドルウェア、ハンドラー層から利用する。
type MetricsCollector interface {
	RecordCMSRequest(operation, result string, duration time.Duration)
	RecordHTTPRequest(route string, statusCode int)
	RecordOGImage(result string)
	RecordImageProxyBytes(n int64)
	SetCMSUp(up bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cmsRequests     *prometheus.CounterVec
	cmsDuration     *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	ogImages        *prometheus.CounterVec
	imageProxyBytes prometheus.Counter
	cmsUp           prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cmsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hayart_cms_requests_total",
			Help: "CMSへのGraphQLリクエスト数（オペレーション・結果別）",
		}, []string{"operation", "result"}),
		cmsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hayart_cms_request_duration_seconds",
			Help:    "CMSへのGraphQLリクエストのレイテンシ（秒、リトライ込み）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hayart_http_requests_total",
			Help: "ルート・HTTPステータスコード別のレスポンス数",
		}, []string{"route", "status"}),
		ogImages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hayart_og_images_rendered_total",
			Help: "OG画像の生成数（結果別）",
		}, []string{"result"}),
		imageProxyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hayart_image_proxy_bytes_total",
			Help: "画像プロキシが中継したバイト数の合計",
		}),
		cmsUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hayart_cms_up",
			Help: "直近のヘルスプローブでCMSに到達できたか（1: 到達可, 0: 不可）",
		}),
	}

	reg.MustRegister(
		c.cmsRequests,
		c.cmsDuration,
		c.httpRequests,
		c.ogImages,
		c.imageProxyBytes,
		c.cmsUp,
	)

	return c
}

// RecordCMSRequest はCMSリクエストの結果とレイテンシを記録する。
func (c *Collector) RecordCMSRequest(operation, result string, duration time.Duration) {
	c.cmsRequests.WithLabelValues(operation, result).Inc()
	c.cmsDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest はルートパターンとステータスコードを記録する。
func (c *Collector) RecordHTTPRequest(route string, statusCode int) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}

// RecordOGImage はOG画像生成の結果を記録する。
func (c *Collector) RecordOGImage(result string) {
	c.ogImages.WithLabelValues(result).Inc()
}

// RecordImageProxyBytes は画像プロキシが返したバイト数を加算する。
func (c *Collector) RecordImageProxyBytes(n int64) {
	if n <= 0 {
		return
	}
	c.imageProxyBytes.Add(float64(n))
}

// SetCMSUp はCMSヘルスプローブの結果を記録する。
func (c *Collector) SetCMSUp(up bool) {
	if up {
		c.cmsUp.Set(1)
		return
	}
	c.cmsUp.Set(0)
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
