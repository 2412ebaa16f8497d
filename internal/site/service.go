// Package site はサイト設定とSNSリンクのドメインロジックを提供する。
package site

import (
	"context"
	"fmt"
	"sort"

	"github.com/hayart/web/internal/metadata"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/repository"
)

// DefaultSocialLinkLimit はフッターに表示するSNSリンクの取得件数。
const DefaultSocialLinkLimit = 10

// DefaultSettings はCMSがサイト設定を返さない場合に使う設定を返す。
func DefaultSettings() model.Settings {
	return model.Settings{
		Title:       "HayArt Cultural Centre",
		Description: "Contemporary art and cultural events in Armenia",
		URL:         "https://hayart.am",
	}
}

// Service はサイト全体の設定・SNSリンクのサービス層。
type Service struct {
	settingsRepo repository.SettingsRepository
	socialRepo   repository.SocialLinkRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(settingsRepo repository.SettingsRepository, socialRepo repository.SocialLinkRepository) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		socialRepo:   socialRepo,
	}
}

// Settings はサイト設定を返す。
// CMSが設定を返さない場合は DefaultSettings を使い、タイトルと説明文の実体参照をデコードする。
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("サイト設定の取得に失敗しました: %w", err)
	}

	result := DefaultSettings()
	if settings != nil {
		result = *settings
	}
	result.Title = metadata.DecodeHTMLEntities(result.Title)
	result.Description = metadata.DecodeHTMLEntities(result.Description)
	return result, nil
}

// SocialLinks は表示順の設定されたSNSリンクを表示順の昇順で返す。
// 表示順が未設定のリンクは除外し、同じ表示順のリンクはCMSの並び順を保つ。
func (s *Service) SocialLinks(ctx context.Context, first int) ([]model.SocialLink, error) {
	if first <= 0 {
		first = DefaultSocialLinkLimit
	}

	links, err := s.socialRepo.List(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("SNSリンクの取得に失敗しました: %w", err)
	}

	ordered := make([]model.SocialLink, 0, len(links))
	for _, link := range links {
		if link.Order != nil {
			ordered = append(ordered, link)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return *ordered[i].Order < *ordered[j].Order
	})
	return ordered, nil
}
