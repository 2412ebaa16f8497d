package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// newTestClient はテストサーバー向けに短いバックオフを設定したClientを返す。
func newTestClient(server *httptest.Server, buf *bytes.Buffer, opts ...Option) *Client {
	base := []Option{
		WithHTTPClient(server.Client()),
		WithLogger(newTestLogger(buf)),
		WithRetry(3, time.Millisecond),
		WithTimeout(time.Second),
	}
	return New(server.URL, append(base, opts...)...)
}

type cmsRecord struct {
	operation string
	result    string
}

// mockMetrics はMetricsCollectorのテスト用実装。
type mockMetrics struct {
	cms []cmsRecord
}

func (m *mockMetrics) RecordCMSRequest(operation, result string, duration time.Duration) {
	m.cms = append(m.cms, cmsRecord{operation: operation, result: result})
}
func (m *mockMetrics) RecordHTTPRequest(route string, statusCode int) {}
func (m *mockMetrics) RecordOGImage(result string)                    {}
func (m *mockMetrics) RecordImageProxyBytes(n int64)                  {}
func (m *mockMetrics) SetCMSUp(up bool)                               {}

func TestNew_Defaults(t *testing.T) {
	c := New("https://cms.hayart.am/graphql")
	if c == nil {
		t.Fatal("New は nil を返してはならない")
	}
	if c.Endpoint() != "https://cms.hayart.am/graphql" {
		t.Errorf("Endpoint() = %q", c.Endpoint())
	}
	if c.maxRetries != defaultMaxRetries {
		t.Errorf("maxRetries = %d, want %d", c.maxRetries, defaultMaxRetries)
	}
	if c.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, defaultTimeout)
	}
}

func TestClient_Execute_SendsQueryAndDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var body graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("リクエストボディのデコードに失敗: %v", err)
		}
		if body.OperationName != "GetEventBySlug" {
			t.Errorf("operationName = %q, want GetEventBySlug", body.OperationName)
		}
		if !strings.Contains(body.Query, "query GetEventBySlug") {
			t.Errorf("query = %q", body.Query)
		}
		if body.Variables["slug"] != "jazz-night" {
			t.Errorf("variables.slug = %v, want jazz-night", body.Variables["slug"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"event":{"title":"Jazz Night"}}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf)

	var out struct {
		Event struct {
			Title string `json:"title"`
		} `json:"event"`
	}
	err := c.Execute(context.Background(), "GetEventBySlug",
		`query GetEventBySlug($slug: ID!) { event(id: $slug, idType: SLUG) { title } }`,
		map[string]any{"slug": "jazz-night"}, &out)
	if err != nil {
		t.Fatalf("Execute がエラーを返した: %v", err)
	}
	if out.Event.Title != "Jazz Night" {
		t.Errorf("title = %q, want Jazz Night", out.Event.Title)
	}
}

func TestClient_Execute_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	m := &mockMetrics{}
	c := newTestClient(server, &buf, WithMetrics(m))

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.Execute(context.Background(), "GetPosts", "query GetPosts { ok }", nil, &out); err != nil {
		t.Fatalf("Execute がエラーを返した: %v", err)
	}
	if !out.OK {
		t.Error("ok = false, want true")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("呼び出し回数 = %d, want 3", got)
	}
	if !strings.Contains(buf.String(), "CMSリクエストをリトライします") {
		t.Error("リトライ時に警告ログが出力されるべき")
	}
	if len(m.cms) != 1 || m.cms[0].result != "success" || m.cms[0].operation != "GetPosts" {
		t.Errorf("metrics = %+v, want one success for GetPosts", m.cms)
	}
}

func TestClient_Execute_RetriesTooManyRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf)

	if err := c.Execute(context.Background(), "GetSettings", "query GetSettings { x }", nil, nil); err != nil {
		t.Fatalf("Execute がエラーを返した: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("呼び出し回数 = %d, want 2", got)
	}
}

func TestClient_Execute_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var buf bytes.Buffer
	m := &mockMetrics{}
	c := newTestClient(server, &buf, WithMetrics(m), WithRetry(2, time.Millisecond))

	err := c.Execute(context.Background(), "GetEvents", "query GetEvents { x }", nil, nil)

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", statusErr.StatusCode)
	}
	// 初回 + リトライ2回
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("呼び出し回数 = %d, want 3", got)
	}
	if len(m.cms) != 1 || m.cms[0].result != "failure" {
		t.Errorf("metrics = %+v, want one failure", m.cms)
	}
	if !strings.Contains(buf.String(), "CMSリクエストに失敗しました") {
		t.Error("最終失敗時にエラーログが出力されるべき")
	}
}

func TestClient_Execute_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf)

	err := c.Execute(context.Background(), "GetEvents", "query GetEvents { x }", nil, nil)

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("error = %v, want HTTPStatusError 400", err)
	}
	if statusErr.Temporary() {
		t.Error("400 は一時的なエラーではない")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("呼び出し回数 = %d, want 1（リトライしない）", got)
	}
}

func TestClient_Execute_GraphQLErrorsArePermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"data":null,"errors":[{"message":"Cannot query field \"foo\""},{"message":"second"}]}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf)

	err := c.Execute(context.Background(), "GetPageBySlug", "query GetPageBySlug { foo }", nil, nil)

	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("error = %v, want *GraphQLError", err)
	}
	if len(gqlErr.Messages) != 2 {
		t.Errorf("Messages = %v, want 2 entries", gqlErr.Messages)
	}
	if !strings.Contains(gqlErr.Error(), "GetPageBySlug") {
		t.Errorf("Error() = %q, should mention the operation", gqlErr.Error())
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("呼び出し回数 = %d, want 1", got)
	}
}

func TestClient_Execute_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf)

	if err := c.Execute(context.Background(), "GetPosts", "query GetPosts { x }", nil, nil); err == nil {
		t.Fatal("不正なJSONに対してエラーを返すべき")
	}
}

func TestClient_Execute_RetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var buf bytes.Buffer
	c := New(url, WithLogger(newTestLogger(&buf)), WithRetry(1, time.Millisecond))

	err := c.Execute(context.Background(), "GetEvents", "query GetEvents { x }", nil, nil)
	if err == nil {
		t.Fatal("接続できないサーバーに対してエラーを返すべき")
	}
	if strings.Count(buf.String(), "CMSリクエストをリトライします") != 1 {
		t.Errorf("リトライは1回のはず: %s", buf.String())
	}
}

func TestClient_Execute_RespectsCanceledContext(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf, WithRetry(5, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Execute(ctx, "GetEvents", "query GetEvents { x }", nil, nil)
	if err == nil {
		t.Fatal("キャンセルされたコンテキストでエラーを返すべき")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("コンテキストのキャンセル後はバックオフを待たずに戻るべき")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("呼び出し回数 = %d, want 1", got)
	}
}

func TestClient_Execute_PerAttemptTimeout(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := newTestClient(server, &buf, WithTimeout(50*time.Millisecond))

	if err := c.Execute(context.Background(), "GetEvents", "query GetEvents { x }", nil, nil); err != nil {
		t.Fatalf("タイムアウト後のリトライで成功するべき: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("呼び出し回数 = %d, want 2", got)
	}
}

func TestHTTPStatusError_Temporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusGatewayTimeout, true},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		e := &HTTPStatusError{Operation: "op", StatusCode: tt.status}
		if got := e.Temporary(); got != tt.want {
			t.Errorf("Temporary(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
