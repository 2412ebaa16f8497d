// Package event はイベント取得のドメインロジックを提供する。
package event

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hayart/web/internal/calendar"
	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/repository"
)

// 取得件数の既定値。
const (
	DefaultListLimit = 20
	DefaultHeroLimit = 5
)

// Service はイベントのサービス層。
type Service struct {
	repo repository.EventRepository
	loc  *time.Location
	now  func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// locは「開催予定」判定で壁時計時刻を解釈するタイムゾーン。nilの場合はUTC。
func NewService(repo repository.EventRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// List は最大first件のイベントをCMSの並び順で返す。
func (s *Service) List(ctx context.Context, first int) ([]model.Event, error) {
	events, err := s.repo.List(ctx, normalizeLimit(first, DefaultListLimit))
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return events, nil
}

// Get は指定スラッグのイベントを返す。存在しない場合はEVENT_NOT_FOUNDのAPIErrorを返す。
func (s *Service) Get(ctx context.Context, slug string) (*model.EventDetail, error) {
	ev, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if ev == nil {
		return nil, model.NewEventNotFoundError(slug)
	}
	return ev, nil
}

// Hero はヒーロースライダーに表示する開催予定のイベントを返す。
// 開始日時をサイトのタイムゾーンの壁時計時刻として解釈し、現在時刻以降のものだけを
// 開始日時の昇順に最大first件返す。開始日時が解析できないイベントは除外する。
func (s *Service) Hero(ctx context.Context, first int) ([]model.Event, error) {
	first = normalizeLimit(first, DefaultHeroLimit)

	events, err := s.repo.ListHero(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("ヒーローイベントの取得に失敗しました: %w", err)
	}

	type upcoming struct {
		event model.Event
		start time.Time
	}

	now := s.now()
	var list []upcoming
	for _, ev := range events {
		start, err := datefmt.ParseDateTime(ev.Details.StartDateTime)
		if err != nil {
			continue
		}
		at := start.In(s.loc)
		if at.Before(now) {
			continue
		}
		list = append(list, upcoming{event: ev, start: at})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].start.Before(list[j].start)
	})
	if len(list) > first {
		list = list[:first]
	}

	result := make([]model.Event, len(list))
	for i, u := range list {
		result[i] = u.event
	}
	return result, nil
}

// Calendar は最大first件のイベントからカレンダー表示モデルを組み立てる。
func (s *Service) Calendar(ctx context.Context, first int) (calendar.Calendar, error) {
	events, err := s.List(ctx, first)
	if err != nil {
		return calendar.Calendar{}, err
	}
	return calendar.Build(events), nil
}

func normalizeLimit(first, def int) int {
	if first <= 0 {
		return def
	}
	return first
}
