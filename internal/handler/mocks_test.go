package handler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/hayart/web/internal/calendar"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/ogimage"
	"github.com/hayart/web/internal/security"
	"github.com/hayart/web/internal/worker/probe"
)

// --- モック定義 ---

// mockEventService はEventServiceInterfaceのモック実装。
type mockEventService struct {
	listFn     func(ctx context.Context, first int) ([]model.Event, error)
	getFn      func(ctx context.Context, slug string) (*model.EventDetail, error)
	heroFn     func(ctx context.Context, first int) ([]model.Event, error)
	calendarFn func(ctx context.Context, first int) (calendar.Calendar, error)
}

func (m *mockEventService) List(ctx context.Context, first int) ([]model.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, first)
	}
	return nil, nil
}

func (m *mockEventService) Get(ctx context.Context, slug string) (*model.EventDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, model.NewEventNotFoundError(slug)
}

func (m *mockEventService) Hero(ctx context.Context, first int) ([]model.Event, error) {
	if m.heroFn != nil {
		return m.heroFn(ctx, first)
	}
	return nil, nil
}

func (m *mockEventService) Calendar(ctx context.Context, first int) (calendar.Calendar, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ctx, first)
	}
	return calendar.Calendar{}, nil
}

// mockPostService はPostServiceInterfaceのモック実装。
type mockPostService struct {
	listFn func(ctx context.Context, first int) ([]model.Post, error)
	getFn  func(ctx context.Context, slug string) (*model.PostDetail, error)
}

func (m *mockPostService) List(ctx context.Context, first int) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, first)
	}
	return nil, nil
}

func (m *mockPostService) Get(ctx context.Context, slug string) (*model.PostDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, model.NewPostNotFoundError(slug)
}

// mockPageService はPageServiceInterfaceのモック実装。
type mockPageService struct {
	getFn func(ctx context.Context, slug string) (*model.Page, error)
}

func (m *mockPageService) Get(ctx context.Context, slug string) (*model.Page, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slug)
	}
	return nil, model.NewPageNotFoundError(slug)
}

// mockSiteService はSiteServiceInterfaceのモック実装。
type mockSiteService struct {
	settingsFn    func(ctx context.Context) (model.Settings, error)
	socialLinksFn func(ctx context.Context, first int) ([]model.SocialLink, error)
}

func (m *mockSiteService) Settings(ctx context.Context) (model.Settings, error) {
	if m.settingsFn != nil {
		return m.settingsFn(ctx)
	}
	return model.Settings{Title: "Test Centre", Description: "Test description", URL: "https://example.am"}, nil
}

func (m *mockSiteService) SocialLinks(ctx context.Context, first int) ([]model.SocialLink, error) {
	if m.socialLinksFn != nil {
		return m.socialLinksFn(ctx, first)
	}
	return nil, nil
}

// mockOGImageService はOGImageServiceInterfaceのモック実装。
type mockOGImageService struct {
	enabled  bool
	renderFn func(ctx context.Context, card ogimage.Card) ([]byte, error)

	mu    sync.Mutex
	cards []ogimage.Card
}

func (m *mockOGImageService) Enabled() bool {
	return m.enabled
}

func (m *mockOGImageService) Render(ctx context.Context, card ogimage.Card) ([]byte, error) {
	m.mu.Lock()
	m.cards = append(m.cards, card)
	m.mu.Unlock()
	if m.renderFn != nil {
		return m.renderFn(ctx, card)
	}
	return []byte("\x89PNG"), nil
}

func (m *mockOGImageService) lastCard() ogimage.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.cards) == 0 {
		return ogimage.Card{}
	}
	return m.cards[len(m.cards)-1]
}

// mockImageProxy はImageProxyInterfaceのモック実装。
type mockImageProxy struct {
	validateFn func(rawURL string) (*url.URL, error)
	fetchFn    func(ctx context.Context, u *url.URL) (*security.Image, error)
}

func (m *mockImageProxy) Validate(rawURL string) (*url.URL, error) {
	if m.validateFn != nil {
		return m.validateFn(rawURL)
	}
	return url.Parse(rawURL)
}

func (m *mockImageProxy) Fetch(ctx context.Context, u *url.URL) (*security.Image, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, u)
	}
	return &security.Image{Body: []byte("img"), ContentType: "image/jpeg"}, nil
}

// mockHealth はHealthStatusProviderのモック実装。
type mockHealth struct {
	status probe.Status
}

func (m *mockHealth) Status() probe.Status {
	return m.status
}

// mockCollector はmetrics.MetricsCollectorのモック実装。
type mockCollector struct {
	mu         sync.Mutex
	imageBytes int64
	routes     []string
}

func (m *mockCollector) RecordCMSRequest(operation, result string, duration time.Duration) {}

func (m *mockCollector) RecordHTTPRequest(route string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
}

func (m *mockCollector) RecordOGImage(result string) {}

func (m *mockCollector) RecordImageProxyBytes(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageBytes += n
}

func (m *mockCollector) SetCMSUp(up bool) {}
