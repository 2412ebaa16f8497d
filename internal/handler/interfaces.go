package handler

import (
	"context"
	"net/url"

	"github.com/hayart/web/internal/calendar"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/ogimage"
	"github.com/hayart/web/internal/security"
	"github.com/hayart/web/internal/worker/probe"
)

// EventServiceInterface はイベント系ハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	List(ctx context.Context, first int) ([]model.Event, error)
	Get(ctx context.Context, slug string) (*model.EventDetail, error)
	Hero(ctx context.Context, first int) ([]model.Event, error)
	Calendar(ctx context.Context, first int) (calendar.Calendar, error)
}

// PostServiceInterface は記事系ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context, first int) ([]model.Post, error)
	Get(ctx context.Context, slug string) (*model.PostDetail, error)
}

// PageServiceInterface は固定ページハンドラーが必要とするサービスインターフェース。
type PageServiceInterface interface {
	Get(ctx context.Context, slug string) (*model.Page, error)
}

// SiteServiceInterface はレイアウト（ヘッダー・フッター・メタデータ）用のサービスインターフェース。
type SiteServiceInterface interface {
	Settings(ctx context.Context) (model.Settings, error)
	SocialLinks(ctx context.Context, first int) ([]model.SocialLink, error)
}

// OGImageServiceInterface はプレビュー画像の生成インターフェース。
type OGImageServiceInterface interface {
	Enabled() bool
	Render(ctx context.Context, card ogimage.Card) ([]byte, error)
}

// ImageProxyInterface はCMS画像の検証と取得のインターフェース。
type ImageProxyInterface interface {
	Validate(rawURL string) (*url.URL, error)
	Fetch(ctx context.Context, u *url.URL) (*security.Image, error)
}

// HealthStatusProvider はCMSプローブの直近結果を返す。
type HealthStatusProvider interface {
	Status() probe.Status
}
