// Package calendar はイベントを開催日・月ごとにまとめ、カレンダー表示用の構造を組み立てる。
package calendar

import (
	"sort"
	"strings"

	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/model"
)

// fallbackMonthLabel は月見出しを導出できない日グループに付ける見出し。
const fallbackMonthLabel = "TBA"

// DayGroup は同じ開催日（開始日時の日付部）のイベントの集まり。
// Eventsは入力順を保持し、グループ内で並べ替えない。
type DayGroup struct {
	DayKey     string        `json:"day_key"`
	MonthLabel string        `json:"month_label"`
	DayLabel   string        `json:"day_label"`
	Events     []model.Event `json:"events"`
}

// MonthBucket は同じ月見出しに属する日グループの集まり。
// DaysはDayKeyの昇順に並ぶ。
type MonthBucket struct {
	MonthLabel string     `json:"month_label"`
	Days       []DayGroup `json:"days"`
}

// Calendar はカレンダーセクションの表示モデル。
type Calendar struct {
	Months []MonthBucket `json:"months"`
	// ExpandedDay は初期表示で展開する日（最初の日）のDayKey。イベントがなければ空。
	ExpandedDay string `json:"expanded_day,omitempty"`
}

// IsEmpty は表示するイベントがないかどうかを返す。
func (c Calendar) IsEmpty() bool {
	return len(c.Months) == 0
}

// GroupEventsByStartDay はイベントを開始日のDayKeyごとにまとめる。
// 開始日時の日付部（最初の "T" または空白より前）だけを見るため、
// 時刻部にタイムゾーンが付いていたり時刻が範囲外だったりしても日付が読めればグループに含める。
// 開始日時が未設定か、日付部を解析できないイベントはどのグループにも含めない。
// DayKeyはゼロ埋めされた "YYYY-MM-DD" に正規化するため、
// "2024-1-5" と "2024-01-05" は同じ日として扱われる。
func GroupEventsByStartDay(events []model.Event) map[string][]model.Event {
	groups := make(map[string][]model.Event)
	for _, ev := range events {
		day, err := datefmt.ParseDateTime(datePortion(ev.Details.StartDateTime))
		if err != nil {
			continue
		}
		key := day.DayKey()
		groups[key] = append(groups[key], ev)
	}
	return groups
}

// datePortion は日時文字列から日付部を取り出す。
func datePortion(s string) string {
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// BuildMonthBuckets は日ごとのグループを月見出しごとにまとめる。
// DayKeyを文字列として昇順に並べ（ゼロ埋め形式のため時系列順と一致する）、
// 各日の見出しを先頭イベントの開始日時から導出し、初出順に月バケットへ畳み込む。
// 見出しを導出できない場合は DayKey + "T00:00:00" で再試行し、
// それでも失敗した場合は月見出しを "TBA"、日見出しをDayKeyとする。
func BuildMonthBuckets(days map[string][]model.Event) []MonthBucket {
	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]MonthBucket, 0)
	index := make(map[string]int)

	for _, key := range keys {
		group := newDayGroup(key, days[key])

		i, ok := index[group.MonthLabel]
		if !ok {
			i = len(buckets)
			index[group.MonthLabel] = i
			buckets = append(buckets, MonthBucket{MonthLabel: group.MonthLabel})
		}
		buckets[i].Days = append(buckets[i].Days, group)
	}

	return buckets
}

// newDayGroup は日見出し・月見出しを導出してDayGroupを生成する。
func newDayGroup(key string, events []model.Event) DayGroup {
	source := key + "T00:00:00"
	if len(events) > 0 && events[0].Details.StartDateTime != "" {
		source = events[0].Details.StartDateTime
	}

	label := datefmt.FormatCalendarDate(source)
	if label.Month == "" {
		label = datefmt.FormatCalendarDate(key + "T00:00:00")
	}

	group := DayGroup{
		DayKey:     key,
		MonthLabel: label.Month,
		DayLabel:   label.DayLabel,
		Events:     events,
	}
	if group.MonthLabel == "" {
		group.MonthLabel = fallbackMonthLabel
	}
	if group.DayLabel == "" {
		group.DayLabel = key
	}
	return group
}

// Build はイベント一覧からカレンダー表示モデルを組み立てる。
// イベントを開始日時の文字列で安定ソートしてから日・月ごとにまとめ、
// 最初の日を初期展開日とする。
func Build(events []model.Event) Calendar {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Details.StartDateTime < sorted[j].Details.StartDateTime
	})

	months := BuildMonthBuckets(GroupEventsByStartDay(sorted))

	cal := Calendar{Months: months}
	if len(months) > 0 && len(months[0].Days) > 0 {
		cal.ExpandedDay = months[0].Days[0].DayKey
	}
	return cal
}
