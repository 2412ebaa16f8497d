package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/ogimage"
	"github.com/hayart/web/internal/security"
)

// --- GET /_img テスト ---

func TestImageHandler_Proxy_Success(t *testing.T) {
	deps := newTestDeps()
	collector := &mockCollector{}
	deps.Metrics = collector
	deps.ImageProxy = &mockImageProxy{
		fetchFn: func(ctx context.Context, u *url.URL) (*security.Image, error) {
			if u.String() != "https://cms.example.am/wp-content/uploads/a.png" {
				t.Errorf("url = %q", u.String())
			}
			return &security.Image{Body: []byte("pngdata"), ContentType: "image/png"}, nil
		},
	}

	w := serve(NewRouter(deps), http.MethodGet, "/_img?url="+url.QueryEscape("https://cms.example.am/wp-content/uploads/a.png"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if w.Body.String() != "pngdata" {
		t.Errorf("body = %q", w.Body.String())
	}
	if collector.imageBytes != 7 {
		t.Errorf("recorded bytes = %d, want 7", collector.imageBytes)
	}
}

func TestImageHandler_Proxy_RejectedURL(t *testing.T) {
	deps := newTestDeps()
	fetched := false
	deps.ImageProxy = &mockImageProxy{
		validateFn: func(rawURL string) (*url.URL, error) {
			return nil, fmt.Errorf("%w: not hosted by the CMS", security.ErrImageURLRejected)
		},
		fetchFn: func(ctx context.Context, u *url.URL) (*security.Image, error) {
			fetched = true
			return nil, nil
		},
	}

	w := serve(NewRouter(deps), http.MethodGet, "/_img?url="+url.QueryEscape("http://169.254.169.254/latest"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if fetched {
		t.Error("rejected URL must not be fetched")
	}
}

func TestImageHandler_Proxy_FetchFailure(t *testing.T) {
	deps := newTestDeps()
	deps.ImageProxy = &mockImageProxy{
		fetchFn: func(ctx context.Context, u *url.URL) (*security.Image, error) {
			return nil, security.ErrImageTooLarge
		},
	}

	w := serve(NewRouter(deps), http.MethodGet, "/_img?url=https://cms.example.am/wp-content/uploads/huge.jpg")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

// --- OG画像テスト ---

func TestOGImageHandler_RendersCards(t *testing.T) {
	deps := newTestDeps()
	images := &mockOGImageService{enabled: true}
	deps.OGImageService = images
	deps.EventService = &mockEventService{
		getFn: func(ctx context.Context, slug string) (*model.EventDetail, error) {
			return &model.EventDetail{Event: sampleEvent(slug, "2024-11-25T12:00:00", "2024-11-28T09:00:00")}, nil
		},
	}
	router := NewRouter(deps)

	tests := []struct {
		path      string
		wantTitle string
		wantBadge string
	}{
		{"/opengraph-image.png", "Test Centre", ""},
		{"/blog/opengraph-image.png", "Latest News", "NEWS"},
		{"/event/jazz/opengraph-image.png", "Event jazz", "Exhibition"},
		// 見つからない記事・ページも「Not Found」カードとして描画する
		{"/blog/missing/opengraph-image.png", "Post Not Found", "NEWS"},
		{"/about/opengraph-image.png", "Page Not Found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(router, http.MethodGet, tt.path)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q, want image/png", ct)
			}
			card := images.lastCard()
			if card.Title != tt.wantTitle || card.Badge != tt.wantBadge {
				t.Errorf("card = %+v, want title %q badge %q", card, tt.wantTitle, tt.wantBadge)
			}
		})
	}
}

func TestOGImageHandler_CMSFailure(t *testing.T) {
	deps := newTestDeps()
	deps.PostService = &mockPostService{
		getFn: func(ctx context.Context, slug string) (*model.PostDetail, error) {
			return nil, errors.New("connection reset")
		},
	}

	w := serve(NewRouter(deps), http.MethodGet, "/blog/any/opengraph-image.png")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestOGImageHandler_Disabled(t *testing.T) {
	deps := newTestDeps()
	deps.OGImageService = &mockOGImageService{enabled: false}

	router := NewRouter(deps)
	w := serve(router, http.MethodGet, "/opengraph-image.png")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	// 無効時はページにもog:imageを出力しない
	page := serve(router, http.MethodGet, "/blog")
	assertNotContains(t, page.Body.String(), "opengraph-image.png")
}

func TestOGImageHandler_RenderFailure(t *testing.T) {
	deps := newTestDeps()
	deps.OGImageService = &mockOGImageService{
		enabled: true,
		renderFn: func(ctx context.Context, card ogimage.Card) ([]byte, error) {
			return nil, errors.New("chrome crashed")
		},
	}

	w := serve(NewRouter(deps), http.MethodGet, "/blog/opengraph-image.png")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
