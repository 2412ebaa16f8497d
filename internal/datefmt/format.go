package datefmt

import (
	"strconv"
	"strings"
	"time"
)

// rangeSeparator は範囲表示の区切り文字（前後スペース付きのemダッシュ）。
const rangeSeparator = " — "

// InvalidDate は記事日付が解析できない場合に返す表示文字列。
const InvalidDate = "Invalid Date"

// 月名・曜日名はロケールAPIを使わず固定テーブルから引く。
// 実行環境によらず同一の出力を保証するため。
var (
	shortMonths = [12]string{
		"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
		"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
	}
	longMonths = [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	weekdays = [7]string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	}
)

// Mode は日時範囲の表示モード。
type Mode string

const (
	// ModeCard はイベントカード向けの簡略表示。日付が異なる場合に終了時刻を省略する。
	ModeCard Mode = "card"
	// ModeDetail はイベント詳細ページ向けの完全表示。
	ModeDetail Mode = "detail"
)

// ParseMode は文字列から表示モードを返す。未知の値は ModeCard として扱う。
func ParseMode(s string) Mode {
	if Mode(s) == ModeDetail {
		return ModeDetail
	}
	return ModeCard
}

// FormatDateRange は日付のみの範囲を返す（例: "15 JAN — 20 JAN"）。
// 開始が解析できない場合は空文字列、終了が解析できない場合は開始日のみを返す。
// 同日であっても "15 JAN — 15 JAN" のように両端を表示する。
func FormatDateRange(start, end string) string {
	s, err := ParseDateTime(start)
	if err != nil {
		return ""
	}

	e, err := ParseDateTime(end)
	if err != nil {
		return s.ShortDate()
	}

	return s.ShortDate() + rangeSeparator + e.ShortDate()
}

// FormatDateTimeRange は時刻付きの範囲を返す。
//
//	終了なし:            "12:00 25 NOV"
//	同日:                "12:00 — 18:00 25 NOV"（モードによらない）
//	別日・ModeCard:      "12:00 25 NOV — 28 NOV"
//	別日・ModeDetail:    "12:00 25 NOV — 09:00 28 NOV"
//
// 開始が解析できない、または時刻を持たない場合は空文字列を返す。
// 終了が解析できない、または時刻を持たない場合は終了なしとして扱う。
func FormatDateTimeRange(start, end string, mode Mode) string {
	s, err := ParseDateTime(start)
	if err != nil || !s.HasTime {
		return ""
	}

	startLabel := s.Clock() + " " + s.ShortDate()

	e, err := ParseDateTime(end)
	if err != nil || !e.HasTime {
		return startLabel
	}

	if s.SameDay(e) {
		return s.Clock() + rangeSeparator + e.Clock() + " " + s.ShortDate()
	}

	if mode == ModeDetail {
		return startLabel + rangeSeparator + e.Clock() + " " + e.ShortDate()
	}
	return startLabel + rangeSeparator + e.ShortDate()
}

// FormatTimeRange は時刻のみの範囲を返す（例: "19:00 — 22:00"）。
// 開始に時刻がなければ空文字列、終了に時刻がなければ開始時刻のみを返す。
func FormatTimeRange(start, end string) string {
	s, err := ParseDateTime(start)
	if err != nil || !s.HasTime {
		return ""
	}

	e, err := ParseDateTime(end)
	if err != nil || !e.HasTime {
		return s.Clock()
	}

	return s.Clock() + rangeSeparator + e.Clock()
}

// CalendarDate はカレンダー表示用の見出し文字列。
type CalendarDate struct {
	Month    string // "JANUARY"
	DayLabel string // "15, MONDAY"
	Time     string // "19:00"（時刻がない場合は空）
}

// FormatCalendarDate はカレンダーの月見出し・日見出し・時刻を返す。
// 解析できない場合はすべて空のCalendarDateを返す。
func FormatCalendarDate(s string) CalendarDate {
	d, err := ParseDateTime(s)
	if err != nil {
		return CalendarDate{}
	}

	cd := CalendarDate{
		Month:    strings.ToUpper(longMonths[d.Month-1]),
		DayLabel: strconv.Itoa(d.Day) + ", " + strings.ToUpper(weekdays[d.Weekday()]),
	}
	if d.HasTime {
		cd.Time = d.Clock()
	}
	return cd
}

// postDateLayouts はFormatPostDateInが受け付けるタイムゾーンなしの書式。
var postDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatPostDate はローカルタイムゾーンで記事日付を表示する。
func FormatPostDate(s string) string {
	return FormatPostDateIn(s, time.Local)
}

// FormatPostDateIn は記事日付を "January 15, 2024" 形式で返す。
// イベント系と異なり通常の時刻変換を行う（ParsePostDate参照）。
// 解析できない場合は InvalidDate を返す。
func FormatPostDateIn(s string, loc *time.Location) string {
	t, err := ParsePostDate(s, loc)
	if err != nil {
		return InvalidDate
	}
	return longMonths[t.Month()-1] + " " + strconv.Itoa(t.Day()) + ", " + strconv.Itoa(t.Year())
}

// ParsePostDate は記事の公開日時を時刻として解釈する。
// オフセット付きの入力はlocに変換し、オフセットなしの入力はlocの壁時計時刻とみなす。
func ParsePostDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	return parseInLocation(s, loc)
}

func parseInLocation(s string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range postDateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
