// Package model はドメインモデルを定義する。
package model

// Event はCMSから取得したイベントを表す。
// 日時はタイムゾーンなしの "YYYY-MM-DDTHH:MM:SS" 文字列で、未設定の場合は空文字列。
type Event struct {
	Title            string       `json:"title"`
	Slug             string       `json:"slug"`
	FeaturedImageURL string       `json:"featured_image_url,omitempty"`
	EventTypes       []string     `json:"event_types,omitempty"`
	Details          EventDetails `json:"details"`
}

// EventDetails はイベントの開催情報（ACFカスタムフィールド）を表す。
type EventDetails struct {
	StartDateTime string `json:"start_date_time,omitempty"`
	EndDateTime   string `json:"end_date_time,omitempty"`
	Location      string `json:"location,omitempty"`
	PriceInfo     string `json:"price_info,omitempty"`
}

// EventDetail はイベント詳細ページ用に本文を含むイベント。
type EventDetail struct {
	Event
	Content string `json:"content"`
}

// DisplayTitle はタイトル未設定の場合に代替タイトルを返す。
func (e Event) DisplayTitle() string {
	if e.Title == "" {
		return "Untitled Event"
	}
	return e.Title
}

// PrimaryType は最初のイベント種別を返す。未設定の場合はfallbackを返す。
func (e Event) PrimaryType(fallback string) string {
	for _, t := range e.EventTypes {
		if t != "" {
			return t
		}
	}
	return fallback
}
