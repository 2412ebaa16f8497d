package repository

import (
	"context"
	"fmt"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/model"
)

// CMSPageRepo はWordPress GraphQLを使用した固定ページリポジトリ。
type CMSPageRepo struct {
	client cms.Executor
}

// NewCMSPageRepo はCMSPageRepoを生成する。
func NewCMSPageRepo(client cms.Executor) *CMSPageRepo {
	return &CMSPageRepo{client: client}
}

// FindBySlug は指定スラッグの固定ページを取得する。見つからない場合はnilを返す。
// WordPressの固定ページはURIで引くため、スラッグをそのままURIとして渡す。
func (r *CMSPageRepo) FindBySlug(ctx context.Context, slug string) (*model.Page, error) {
	var data struct {
		Page *pageNode `json:"page"`
	}
	if err := r.client.Execute(ctx, opGetPageBySlug, getPageBySlugQuery, map[string]any{"slug": slug}, &data); err != nil {
		return nil, fmt.Errorf("固定ページの取得に失敗しました: %w", err)
	}
	if data.Page == nil {
		return nil, nil
	}

	page := &model.Page{
		Title:            str(data.Page.Title),
		Slug:             data.Page.Slug,
		Content:          str(data.Page.Content),
		FeaturedImageURL: data.Page.FeaturedImage.url(),
	}
	if page.Slug == "" {
		page.Slug = slug
	}
	return page, nil
}
