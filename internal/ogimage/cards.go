package ogimage

import (
	"strings"
	"time"

	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/metadata"
	"github.com/hayart/web/internal/model"
)

// HomeCard はトップページのカード。サイト名と説明文を中央寄せで表示する。
func HomeCard(settings model.Settings) Card {
	return Card{
		Title:    settings.Title,
		Subtitle: settings.Description,
		Centered: true,
	}
}

// BlogIndexCard はニュース一覧ページのカード。
func BlogIndexCard() Card {
	return Card{
		Badge:    "NEWS",
		Title:    "Latest News",
		Subtitle: "Stay updated with the latest from HayArt Cultural Centre",
		Centered: true,
	}
}

// PostCard は記事ページのカード。postがnilの場合は未検出カードを返す。
// 日付はlocで表示し、解析できない場合は省略する。
func PostCard(post *model.PostDetail, loc *time.Location) Card {
	if post == nil {
		return Card{Badge: "NEWS", Title: "Post Not Found"}
	}

	card := Card{
		Badge: "NEWS",
		Title: post.DisplayTitle(),
	}
	if post.Excerpt != "" {
		card.Subtitle = metadata.TruncateText(metadata.StripHTMLTags(post.Excerpt), 120)
	}
	if date := datefmt.FormatPostDateIn(post.Date, loc); date != datefmt.InvalidDate {
		card.Metadata = date
	}
	return card
}

// EventCard はイベントページのカード。evがnilの場合は未検出カードを返す。
// バッジには最初のイベント種別を使い、日付範囲と会場を副題にまとめる。
func EventCard(ev *model.EventDetail) Card {
	if ev == nil {
		return Card{Badge: "EVENT", Title: "Event Not Found"}
	}

	var parts []string
	if r := datefmt.FormatDateRange(ev.Details.StartDateTime, ev.Details.EndDateTime); r != "" {
		parts = append(parts, "📅 "+r)
	}
	if ev.Details.Location != "" {
		parts = append(parts, "📍 "+ev.Details.Location)
	}

	return Card{
		Badge:    ev.PrimaryType("EVENT"),
		Title:    ev.DisplayTitle(),
		Subtitle: strings.Join(parts, " • "),
	}
}

// PageCard は固定ページのカード。pがnilの場合は未検出カードを返す。
func PageCard(p *model.Page) Card {
	if p == nil {
		return Card{Title: "Page Not Found"}
	}

	card := Card{Title: p.DisplayTitle()}
	if p.Content != "" {
		card.Subtitle = metadata.TruncateText(metadata.StripHTMLTags(p.Content), 150)
	}
	return card
}
