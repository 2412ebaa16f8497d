package repository

import (
	"context"
	"fmt"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/model"
)

// CMSPostRepo はWordPress GraphQLを使用したブログ記事リポジトリ。
type CMSPostRepo struct {
	client cms.Executor
}

// NewCMSPostRepo はCMSPostRepoを生成する。
func NewCMSPostRepo(client cms.Executor) *CMSPostRepo {
	return &CMSPostRepo{client: client}
}

// List は最大first件の記事サマリーを取得する。
func (r *CMSPostRepo) List(ctx context.Context, first int) ([]model.Post, error) {
	var data struct {
		Posts *struct {
			Nodes []postNode `json:"nodes"`
		} `json:"posts"`
	}
	if err := r.client.Execute(ctx, opGetPosts, getPostsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}

	posts := []model.Post{}
	if data.Posts == nil {
		return posts, nil
	}
	for _, n := range data.Posts.Nodes {
		posts = append(posts, n.toModel())
	}
	return posts, nil
}

// FindBySlug は指定スラッグの記事を取得する。見つからない場合はnilを返す。
func (r *CMSPostRepo) FindBySlug(ctx context.Context, slug string) (*model.PostDetail, error) {
	var data struct {
		Post *postNode `json:"post"`
	}
	if err := r.client.Execute(ctx, opGetPostBySlug, getPostBySlugQuery, map[string]any{"slug": slug}, &data); err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if data.Post == nil {
		return nil, nil
	}

	post := data.Post.toModel()
	if post.Slug == "" {
		post.Slug = slug
	}
	return &model.PostDetail{
		Post:    post,
		Content: str(data.Post.Content),
	}, nil
}
