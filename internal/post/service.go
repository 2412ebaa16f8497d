// Package post はブログ記事取得のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"

	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/repository"
)

// DefaultListLimit はトップページのニュース欄に表示する件数。
const DefaultListLimit = 3

// Service は記事のサービス層。
type Service struct {
	repo repository.PostRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.PostRepository) *Service {
	return &Service{repo: repo}
}

// List は最大first件の記事を新しい順に返す。firstが0以下の場合は既定件数。
func (s *Service) List(ctx context.Context, first int) ([]model.Post, error) {
	if first <= 0 {
		first = DefaultListLimit
	}
	posts, err := s.repo.List(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Get は指定スラッグの記事を返す。存在しない場合はPOST_NOT_FOUNDのAPIErrorを返す。
func (s *Service) Get(ctx context.Context, slug string) (*model.PostDetail, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError(slug)
	}
	return p, nil
}
