// Package datefmt はイベント・記事の日時文字列を表示用の文字列に変換する。
//
// CMSのイベント日時は会場の壁時計時刻（タイムゾーンなし）として入力されるため、
// イベント系の関数はタイムゾーン変換を一切行わず、文字列に書かれた数字をそのまま扱う。
// 記事日付のみ通常のカレンダー変換を行う（FormatPostDateIn）。
// すべての関数は副作用を持たず、並行に呼び出してよい。
package datefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparseable は日時文字列が解析できないことを示す。
// 空文字列、日付部の欠落、不正な数値、範囲外の値、タイムゾーン付きの時刻がこれにあたる。
var ErrUnparseable = errors.New("unparseable date-time")

// EventDateTime はタイムゾーンを持たない日時の値オブジェクト。
// ParseDateTime からのみ生成され、生成後は変更されない。
type EventDateTime struct {
	Year   int
	Month  int // 1-12
	Day    int // 1-31
	Hour   int // 0-23
	Minute int // 0-59
	// HasTime は入力に時刻部が含まれていたかどうか。
	HasTime bool
}

// ParseDateTime は "YYYY-MM-DDTHH:MM:SS" 形式の文字列を解析する。
// 日付のみ（"YYYY-MM-DD"）も受け付け、その場合は HasTime が false になる。
// 最初の "T" で日付部と時刻部を分割し、日付部は "-" で3要素、時刻部は ":" で2要素以上に分割する。
// 小数秒は許容するが、"Z" や "+09:00" のようなタイムゾーン指定は ErrUnparseable とする。
func ParseDateTime(input string) (EventDateTime, error) {
	if input == "" {
		return EventDateTime{}, ErrUnparseable
	}

	datePart, timePart, hasT := strings.Cut(input, "T")
	if datePart == "" {
		return EventDateTime{}, ErrUnparseable
	}

	fields := strings.Split(datePart, "-")
	if len(fields) != 3 {
		return EventDateTime{}, ErrUnparseable
	}

	year, ok := parseDigits(fields[0])
	if !ok || year == 0 {
		return EventDateTime{}, ErrUnparseable
	}
	month, ok := parseDigits(fields[1])
	if !ok || month < 1 || month > 12 {
		return EventDateTime{}, ErrUnparseable
	}
	day, ok := parseDigits(fields[2])
	if !ok || day < 1 || day > daysIn(year, month) {
		return EventDateTime{}, ErrUnparseable
	}

	dt := EventDateTime{Year: year, Month: month, Day: day}

	// "2024-01-15T" のように時刻部が空の場合は日付のみとして扱う
	if !hasT || timePart == "" {
		return dt, nil
	}

	hour, minute, ok := parseClock(timePart)
	if !ok {
		return EventDateTime{}, ErrUnparseable
	}
	dt.Hour = hour
	dt.Minute = minute
	dt.HasTime = true

	return dt, nil
}

// parseClock は "HH:MM[:SS[.fff]]" 形式の時刻部を解析する。
func parseClock(s string) (hour, minute int, ok bool) {
	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, 0, false
	}

	hour, ok = parseDigits(fields[0])
	if !ok || hour > 23 {
		return 0, 0, false
	}
	minute, ok = parseDigits(fields[1])
	if !ok || minute > 59 {
		return 0, 0, false
	}

	if len(fields) == 3 {
		sec, frac, hasFrac := strings.Cut(fields[2], ".")
		if _, ok := parseDigits(sec); !ok {
			return 0, 0, false
		}
		if hasFrac {
			if _, ok := parseDigits(frac); !ok {
				return 0, 0, false
			}
		}
	}

	return hour, minute, true
}

// parseDigits は ASCII 数字のみで構成された文字列を整数に変換する。
// 符号や空白は受け付けない。
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 9 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// daysIn は指定年月の日数を返す。
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DayKey はゼロ埋めされた "YYYY-MM-DD" 形式の日付キーを返す。
func (d EventDateTime) DayKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// SameDay は2つの日時が同じ暦日かどうかを返す。
func (d EventDateTime) SameDay(other EventDateTime) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Clock は "HH:MM" 形式の時刻を返す。
func (d EventDateTime) Clock() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// ShortDate は "15 JAN" 形式の日付を返す。日はゼロ埋めしない。
func (d EventDateTime) ShortDate() string {
	return fmt.Sprintf("%d %s", d.Day, shortMonths[d.Month-1])
}

// Weekday は曜日を返す。グレゴリオ暦上の計算のみで、タイムゾーンには依存しない。
func (d EventDateTime) Weekday() time.Weekday {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// In は壁時計時刻を指定タイムゾーンの時刻として解釈した time.Time を返す。
// 「開催前かどうか」の判定など、実時刻との比較が必要な場合に使用する。
func (d EventDateTime) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, 0, 0, loc)
}
