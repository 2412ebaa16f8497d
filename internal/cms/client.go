// Package cms はヘッドレスWordPressのGraphQL APIクライアントを提供する。
// 一時的な障害（通信エラー、429、5xx）は指数バックオフでリトライし、
// 4xxとGraphQLエラーは恒久的な失敗として即座に返す。
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hayart/web/internal/metrics"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultMaxRetries      = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
	// maxResponseSize はGraphQLレスポンスボディの上限（8MB）。
	maxResponseSize = 8 << 20
	userAgent       = "HayArt-Web/1.0"
)

// GraphQLError はGraphQLレスポンスのerrorsフィールドを表す。
type GraphQLError struct {
	Operation string
	Messages  []string
}

// Error はerrorインターフェースを実装する。
func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// HTTPStatusError はCMSが200以外のステータスを返したことを表す。
type HTTPStatusError struct {
	Operation  string
	StatusCode int
}

// Error はerrorインターフェースを実装する。
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("graphql %s: unexpected status %d", e.Operation, e.StatusCode)
}

// Temporary はリトライで回復する見込みのあるステータスかどうかを返す。
func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Executor はGraphQLドキュメントを実行するインターフェース。
// リポジトリ層はこのインターフェースに依存する。
type Executor interface {
	Execute(ctx context.Context, operation, query string, vars map[string]any, out any) error
}

// Client はWordPress GraphQLエンドポイントのクライアント。
// レスポンスキャッシュやリクエスト単位の可変状態を持たないため、
// 複数リクエストから同時に利用してよい。
type Client struct {
	httpClient      *http.Client
	logger          *slog.Logger
	metrics         metrics.MetricsCollector
	endpoint        string
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は使用するhttp.Clientを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger はロガーを設定する。
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics はメトリクスコレクターを設定する。
func WithMetrics(m metrics.MetricsCollector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout は1回のHTTP試行あたりのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry はリトライ回数と初回バックオフ間隔を設定する。maxRetriesが0ならリトライしない。
func WithRetry(maxRetries int, initialInterval time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if initialInterval > 0 {
			c.initialInterval = initialInterval
		}
	}
}

// New は新しいClientを生成する。
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{},
		logger:          slog.Default(),
		endpoint:        endpoint,
		timeout:         defaultTimeout,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint はGraphQLエンドポイントのURLを返す。
func (c *Client) Endpoint() string {
	return c.endpoint
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute はGraphQLドキュメントを実行し、dataフィールドをoutにデコードする。
// outがnilの場合はデコードしない。
func (c *Client) Execute(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{
		Query:         query,
		OperationName: operation,
		Variables:     vars,
	})
	if err != nil {
		return fmt.Errorf("encode graphql request %s: %w", operation, err)
	}

	start := time.Now()
	attempts := 0

	var data json.RawMessage
	op := func() error {
		attempts++
		d, err := c.do(ctx, operation, payload)
		if err != nil {
			return err
		}
		data = d
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("CMSリクエストをリトライします",
			slog.String("operation", operation),
			slog.Int("attempt", attempts),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	err = backoff.RetryNotify(op, c.newBackOff(ctx), notify)
	duration := time.Since(start)

	if err != nil {
		c.record(operation, metrics.ResultFailure, duration)
		c.logger.Error("CMSリクエストに失敗しました",
			slog.String("operation", operation),
			slog.Int("attempts", attempts),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.record(operation, metrics.ResultSuccess, duration)
	c.logger.Debug("CMSリクエストが完了しました",
		slog.String("operation", operation),
		slog.Int("attempts", attempts),
		slog.Duration("duration", duration),
	)

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode graphql data %s: %w", operation, err)
	}
	return nil
}

// newBackOff はリトライ回数とコンテキストで上限を設けた指数バックオフを返す。
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = defaultMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}

// do は1回のHTTP試行を行う。リトライすべきでない失敗はbackoff.Permanentで包んで返す。
func (c *Client) do(ctx context.Context, operation string, payload []byte) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create graphql request %s: %w", operation, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 呼び出し元のキャンセルはリトライしない
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("graphql %s: %w", operation, ctx.Err()))
		}
		return nil, fmt.Errorf("graphql %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		statusErr := &HTTPStatusError{Operation: operation, StatusCode: resp.StatusCode}
		if statusErr.Temporary() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read graphql response %s: %w", operation, err)
	}

	var gr graphQLResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode graphql response %s: %w", operation, err))
	}

	if len(gr.Errors) > 0 {
		gqlErr := &GraphQLError{Operation: operation}
		for _, e := range gr.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return nil, backoff.Permanent(gqlErr)
	}

	return gr.Data, nil
}

func (c *Client) record(operation, result string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCMSRequest(operation, result, d)
}
