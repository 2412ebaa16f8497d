// Package repository はCMSコンテンツへの型付きアクセスのインターフェースを定義する。
//
// 単一レコードの取得で対象が存在しない場合は (nil, nil) を返す。
// 未検出エラーへの変換はサービス層が行う。
package repository

import (
	"context"

	"github.com/hayart/web/internal/model"
)

// EventRepository はイベントの取得インターフェース。
type EventRepository interface {
	// List は最大first件のイベントをCMSの並び順で取得する。
	List(ctx context.Context, first int) ([]model.Event, error)

	// ListHero はヒーロースライダー用に日付昇順で最大first件のイベントを取得する。
	// 開催予定かどうかの絞り込みは行わない。
	ListHero(ctx context.Context, first int) ([]model.Event, error)

	// FindBySlug は指定スラッグのイベントを本文付きで取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.EventDetail, error)
}

// PostRepository はブログ記事の取得インターフェース。
type PostRepository interface {
	// List は最大first件の記事サマリーを新しい順に取得する。
	List(ctx context.Context, first int) ([]model.Post, error)

	// FindBySlug は指定スラッグの記事を取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.PostDetail, error)
}

// PageRepository は固定ページの取得インターフェース。
type PageRepository interface {
	// FindBySlug は指定スラッグ（URI）の固定ページを取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Page, error)
}

// SocialLinkRepository はSNSリンクの取得インターフェース。
type SocialLinkRepository interface {
	// List は最大first件のSNSリンクをCMSの並び順のまま取得する。
	List(ctx context.Context, first int) ([]model.SocialLink, error)
}

// SettingsRepository はサイト設定の取得インターフェース。
type SettingsRepository interface {
	// Get はサイトの基本設定を取得する。CMSが設定を返さない場合はnilを返す。
	Get(ctx context.Context) (*model.Settings, error)
}
