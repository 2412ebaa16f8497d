// Package ics はイベントをiCalendar形式で書き出す。
//
// イベント日時は会場の壁時計時刻なので、UTCに変換せず TZID 付きのローカル時刻として出力する。
package ics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/metadata"
	"github.com/hayart/web/internal/model"
)

// ContentType はiCalendarのレスポンスに付けるContent-Type。
const ContentType = "text/calendar; charset=utf-8"

const productID = "-//HayArt Cultural Centre//Events//EN"

// Exporter はイベントをiCalendar文書に変換する。
type Exporter struct {
	baseURL string
	uidHost string
	tzid    string
	now     func() time.Time
}

// NewExporter はExporterを生成する。
// baseURLはイベントページのURLとUIDのドメインに、locのIANA名はTZIDに使う。
func NewExporter(baseURL string, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	baseURL = strings.TrimRight(baseURL, "/")

	host := "hayart.am"
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	return &Exporter{
		baseURL: baseURL,
		uidHost: host,
		tzid:    loc.String(),
		now:     time.Now,
	}
}

// Calendar はイベント一覧をカレンダー名nameのiCalendar文書にする。
// 開始日時が解析できないイベントは出力しない。
func (e *Exporter) Calendar(name string, events []model.Event) string {
	cal := e.newCalendar(name)
	for _, ev := range events {
		e.addEvent(cal, ev, ev.Details.PriceInfo)
	}
	return cal.Serialize()
}

// Event は単一イベントのiCalendar文書を返す。説明文には本文のテキストを使う。
// 開始日時が解析できない場合は ok=false を返す。
func (e *Exporter) Event(ev *model.EventDetail) (doc string, ok bool) {
	cal := e.newCalendar(ev.DisplayTitle())

	description := metadata.StripHTMLTags(ev.Content)
	if ev.Details.PriceInfo != "" {
		description = strings.TrimSpace(ev.Details.PriceInfo + "\n\n" + description)
	}
	if !e.addEvent(cal, ev.Event, description) {
		return "", false
	}
	return cal.Serialize(), true
}

func (e *Exporter) newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(e.tzid)
	return cal
}

func (e *Exporter) addEvent(cal *ical.Calendar, ev model.Event, description string) bool {
	start, err := datefmt.ParseDateTime(ev.Details.StartDateTime)
	if err != nil {
		return false
	}

	vev := cal.AddEvent(fmt.Sprintf("%s@%s", ev.Slug, e.uidHost))
	vev.SetDtStampTime(e.now())
	vev.SetSummary(ev.DisplayTitle())
	vev.SetURL(e.baseURL + "/event/" + ev.Slug)
	if ev.Details.Location != "" {
		vev.SetLocation(ev.Details.Location)
	}
	if description != "" {
		vev.SetDescription(description)
	}
	if len(ev.EventTypes) > 0 {
		vev.SetProperty(ical.ComponentPropertyCategories, strings.Join(ev.EventTypes, ","))
	}

	if !start.HasTime {
		vev.SetProperty(ical.ComponentPropertyDtStart, dateValue(start), dateParam())
		// 終日イベントの終了日は翌日（排他的）で表す
		end, err := datefmt.ParseDateTime(ev.Details.EndDateTime)
		if err != nil || end.HasTime {
			end = start
		}
		vev.SetProperty(ical.ComponentPropertyDtEnd, nextDateValue(end), dateParam())
		return true
	}

	vev.SetProperty(ical.ComponentPropertyDtStart, dateTimeValue(start), e.tzidParam())
	if end, err := datefmt.ParseDateTime(ev.Details.EndDateTime); err == nil && end.HasTime {
		vev.SetProperty(ical.ComponentPropertyDtEnd, dateTimeValue(end), e.tzidParam())
	}
	return true
}

func (e *Exporter) tzidParam() ical.PropertyParameter {
	return &ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{e.tzid}}
}

func dateParam() ical.PropertyParameter {
	return &ical.KeyValues{Key: string(ical.ParameterValue), Value: []string{"DATE"}}
}

func dateTimeValue(d datefmt.EventDateTime) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", d.Year, d.Month, d.Day, d.Hour, d.Minute)
}

func dateValue(d datefmt.EventDateTime) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

func nextDateValue(d datefmt.EventDateTime) string {
	return time.Date(d.Year, time.Month(d.Month), d.Day+1, 0, 0, 0, 0, time.UTC).Format("20060102")
}
