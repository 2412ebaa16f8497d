package repository

import (
	"context"
	"fmt"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/model"
)

// CMSSocialLinkRepo はWordPress GraphQLを使用したSNSリンクリポジトリ。
type CMSSocialLinkRepo struct {
	client cms.Executor
}

// NewCMSSocialLinkRepo はCMSSocialLinkRepoを生成する。
func NewCMSSocialLinkRepo(client cms.Executor) *CMSSocialLinkRepo {
	return &CMSSocialLinkRepo{client: client}
}

// List は最大first件のSNSリンクを取得する。
func (r *CMSSocialLinkRepo) List(ctx context.Context, first int) ([]model.SocialLink, error) {
	var data struct {
		SocialLinks *struct {
			Nodes []socialLinkNode `json:"nodes"`
		} `json:"socialLinks"`
	}
	if err := r.client.Execute(ctx, opGetSocialLinks, getSocialLinksQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("SNSリンクの取得に失敗しました: %w", err)
	}

	links := []model.SocialLink{}
	if data.SocialLinks == nil {
		return links, nil
	}
	for _, n := range data.SocialLinks.Nodes {
		links = append(links, n.toModel())
	}
	return links, nil
}

// CMSSettingsRepo はWordPress GraphQLを使用したサイト設定リポジトリ。
type CMSSettingsRepo struct {
	client cms.Executor
}

// NewCMSSettingsRepo はCMSSettingsRepoを生成する。
func NewCMSSettingsRepo(client cms.Executor) *CMSSettingsRepo {
	return &CMSSettingsRepo{client: client}
}

// Get はサイトの基本設定を取得する。CMSがgeneralSettingsを返さない場合はnilを返す。
func (r *CMSSettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var data struct {
		GeneralSettings *struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			URL         *string `json:"url"`
		} `json:"generalSettings"`
	}
	if err := r.client.Execute(ctx, opGetSettings, getSettingsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("サイト設定の取得に失敗しました: %w", err)
	}
	if data.GeneralSettings == nil {
		return nil, nil
	}

	return &model.Settings{
		Title:       str(data.GeneralSettings.Title),
		Description: str(data.GeneralSettings.Description),
		URL:         str(data.GeneralSettings.URL),
	}, nil
}
