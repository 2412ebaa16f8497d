package repository

import (
	"context"
	"fmt"

	"github.com/hayart/web/internal/cms"
	"github.com/hayart/web/internal/model"
)

// CMSEventRepo はWordPress GraphQLを使用したイベントリポジトリ。
type CMSEventRepo struct {
	client cms.Executor
}

// NewCMSEventRepo はCMSEventRepoを生成する。
func NewCMSEventRepo(client cms.Executor) *CMSEventRepo {
	return &CMSEventRepo{client: client}
}

type eventsData struct {
	Events *struct {
		Nodes []eventNode `json:"nodes"`
	} `json:"events"`
}

func (d eventsData) toModels() []model.Event {
	if d.Events == nil {
		return []model.Event{}
	}
	events := make([]model.Event, 0, len(d.Events.Nodes))
	for _, n := range d.Events.Nodes {
		events = append(events, n.toModel())
	}
	return events
}

// List は最大first件のイベントを取得する。
func (r *CMSEventRepo) List(ctx context.Context, first int) ([]model.Event, error) {
	var data eventsData
	if err := r.client.Execute(ctx, opGetEvents, getEventsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return data.toModels(), nil
}

// ListHero はヒーロースライダー用のイベントを日付昇順で取得する。
func (r *CMSEventRepo) ListHero(ctx context.Context, first int) ([]model.Event, error) {
	var data eventsData
	if err := r.client.Execute(ctx, opGetHeroEvents, getHeroEventsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, fmt.Errorf("ヒーローイベントの取得に失敗しました: %w", err)
	}
	return data.toModels(), nil
}

// FindBySlug は指定スラッグのイベントを取得する。見つからない場合はnilを返す。
func (r *CMSEventRepo) FindBySlug(ctx context.Context, slug string) (*model.EventDetail, error) {
	var data struct {
		Event *eventNode `json:"event"`
	}
	if err := r.client.Execute(ctx, opGetEventBySlug, getEventBySlugQuery, map[string]any{"slug": slug}, &data); err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if data.Event == nil {
		return nil, nil
	}

	ev := data.Event.toModel()
	if ev.Slug == "" {
		ev.Slug = slug
	}
	return &model.EventDetail{
		Event:   ev,
		Content: str(data.Event.Content),
	}, nil
}
