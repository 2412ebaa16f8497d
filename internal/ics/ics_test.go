package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/hayart/web/internal/model"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Yerevan")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	e := NewExporter("https://hayart.am/", loc)
	e.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func parse(t *testing.T, doc string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseCalendar() error: %v\n%s", err, doc)
	}
	return cal
}

func propValue(ev *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func propParam(ev *ical.VEvent, p ical.ComponentProperty, key string) string {
	prop := ev.GetProperty(p)
	if prop == nil {
		return ""
	}
	if vs := prop.ICalParameters[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func TestExporter_Calendar_WallClockWithTZID(t *testing.T) {
	e := newTestExporter(t)
	events := []model.Event{
		{
			Title:      "Jazz Night",
			Slug:       "jazz-night",
			EventTypes: []string{"Concert"},
			Details: model.EventDetails{
				StartDateTime: "2024-11-25T19:00:00",
				EndDateTime:   "2024-11-25T22:30:00",
				Location:      "Main Hall",
				PriceInfo:     "5000 AMD",
			},
		},
		{Title: "Undated", Slug: "undated"},
		{Title: "Broken", Slug: "broken", Details: model.EventDetails{StartDateTime: "2024-11-25T19:00:00Z"}},
	}

	cal := parse(t, e.Calendar("HayArt Events", events))

	vevents := cal.Events()
	if len(vevents) != 1 {
		t.Fatalf("events = %d, want 1 (unparseable starts skipped)", len(vevents))
	}
	ev := vevents[0]

	checks := map[ical.ComponentProperty]string{
		ical.ComponentPropertyUniqueId:    "jazz-night@hayart.am",
		ical.ComponentPropertySummary:     "Jazz Night",
		ical.ComponentPropertyLocation:    "Main Hall",
		ical.ComponentPropertyDescription: "5000 AMD",
		ical.ComponentPropertyUrl:         "https://hayart.am/event/jazz-night",
		ical.ComponentPropertyDtStart:     "20241125T190000",
		ical.ComponentPropertyDtEnd:       "20241125T223000",
	}
	for prop, want := range checks {
		if got := propValue(ev, prop); got != want {
			t.Errorf("%s = %q, want %q", prop, got, want)
		}
	}

	// UTCへの変換は行わず、TZIDで会場のタイムゾーンを示す
	if got := propParam(ev, ical.ComponentPropertyDtStart, "TZID"); got != "Asia/Yerevan" {
		t.Errorf("DTSTART TZID = %q, want Asia/Yerevan", got)
	}
	if got := propParam(ev, ical.ComponentPropertyDtEnd, "TZID"); got != "Asia/Yerevan" {
		t.Errorf("DTEND TZID = %q, want Asia/Yerevan", got)
	}
}

func TestExporter_Calendar_DateOnly(t *testing.T) {
	e := newTestExporter(t)
	events := []model.Event{
		{Slug: "festival", Details: model.EventDetails{StartDateTime: "2024-12-30", EndDateTime: "2024-12-31"}},
		{Slug: "single", Details: model.EventDetails{StartDateTime: "2024-02-28"}},
	}

	cal := parse(t, e.Calendar("HayArt Events", events))
	vevents := cal.Events()
	if len(vevents) != 2 {
		t.Fatalf("events = %d, want 2", len(vevents))
	}

	tests := []struct {
		start, end string
	}{
		{"20241230", "20250101"},
		{"20240228", "20240229"},
	}
	for i, tt := range tests {
		ev := vevents[i]
		if got := propValue(ev, ical.ComponentPropertyDtStart); got != tt.start {
			t.Errorf("[%d] DTSTART = %q, want %q", i, got, tt.start)
		}
		if got := propValue(ev, ical.ComponentPropertyDtEnd); got != tt.end {
			t.Errorf("[%d] DTEND = %q, want %q", i, got, tt.end)
		}
		if got := propParam(ev, ical.ComponentPropertyDtStart, "VALUE"); got != "DATE" {
			t.Errorf("[%d] DTSTART VALUE = %q, want DATE", i, got)
		}
	}
	if got := propValue(vevents[0], ical.ComponentPropertySummary); got != "Untitled Event" {
		t.Errorf("SUMMARY = %q, want Untitled Event", got)
	}
}

func TestExporter_Calendar_NoEndTime(t *testing.T) {
	e := newTestExporter(t)
	cal := parse(t, e.Calendar("x", []model.Event{
		{Slug: "talk", Details: model.EventDetails{StartDateTime: "2024-03-05T18:00:00", EndDateTime: "2024-03-06"}},
	}))

	ev := cal.Events()[0]
	if ev.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		t.Error("DTEND without time must be omitted for timed events")
	}
}

func TestExporter_Event(t *testing.T) {
	e := newTestExporter(t)

	doc, ok := e.Event(&model.EventDetail{
		Event: model.Event{
			Title:   "Exhibition",
			Slug:    "exhibition",
			Details: model.EventDetails{StartDateTime: "2024-05-01T10:00:00", PriceInfo: "Free"},
		},
		Content: "<p>Paintings &amp; prints</p>",
	})
	if !ok {
		t.Fatal("Event() ok = false, want true")
	}

	cal := parse(t, doc)
	ev := cal.Events()[0]
	if got := propValue(ev, ical.ComponentPropertyDescription); !strings.Contains(got, "Free") || !strings.Contains(got, "Paintings & prints") {
		t.Errorf("DESCRIPTION = %q", got)
	}

	if _, ok := e.Event(&model.EventDetail{Event: model.Event{Slug: "x"}}); ok {
		t.Error("Event() without start should return ok=false")
	}
}
