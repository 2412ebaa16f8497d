// Package page はWordPress固定ページ取得のドメインロジックを提供する。
package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/repository"
)

// Service は固定ページのサービス層。
type Service struct {
	repo repository.PageRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.PageRepository) *Service {
	return &Service{repo: repo}
}

// Get は指定スラッグの固定ページを返す。存在しない場合はPAGE_NOT_FOUNDのAPIErrorを返す。
// スラッグ前後のスラッシュは取り除いてから問い合わせる。
func (s *Service) Get(ctx context.Context, slug string) (*model.Page, error) {
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return nil, model.NewPageNotFoundError(slug)
	}

	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("固定ページの取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPageNotFoundError(slug)
	}
	return p, nil
}
