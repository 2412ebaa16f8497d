package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hayart/web/internal/calendar"
	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/worker/probe"
)

// maxCalendarEvents は /api/calendar の first に指定できる上限。
const maxCalendarEvents = 100

// APIHandler は読み取り専用のJSONエンドポイントのHTTPハンドラー。
type APIHandler struct {
	events EventServiceInterface
	health HealthStatusProvider
}

// NewAPIHandler はAPIHandlerを生成する。healthはnilでもよい。
func NewAPIHandler(events EventServiceInterface, health HealthStatusProvider) *APIHandler {
	return &APIHandler{
		events: events,
		health: health,
	}
}

// calendarEventResponse はカレンダーAPIのイベント。表示用の日時文字列とページURLを含む。
type calendarEventResponse struct {
	model.Event
	URL      string `json:"url"`
	DateTime string `json:"date_time,omitempty"`
}

type calendarDayResponse struct {
	DayKey   string                  `json:"day_key"`
	DayLabel string                  `json:"day_label"`
	Events   []calendarEventResponse `json:"events"`
}

type calendarMonthResponse struct {
	MonthLabel string                `json:"month_label"`
	Days       []calendarDayResponse `json:"days"`
}

type calendarResponse struct {
	Months      []calendarMonthResponse `json:"months"`
	ExpandedDay string                  `json:"expanded_day,omitempty"`
}

// Calendar はイベントカレンダーをJSONで返す。
// GET /api/calendar?first=20&mode=card
func (h *APIHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	first := homeCalendarLimit
	if v := r.URL.Query().Get("first"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxCalendarEvents {
			handleAPIError(w, r, model.NewInvalidParameterError("first", v))
			return
		}
		first = n
	}
	mode := datefmt.ParseMode(r.URL.Query().Get("mode"))

	cal, err := h.events.Calendar(r.Context(), first)
	if err != nil {
		handleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	json.NewEncoder(w).Encode(toCalendarResponse(cal, mode))
}

func toCalendarResponse(cal calendar.Calendar, mode datefmt.Mode) calendarResponse {
	resp := calendarResponse{
		Months:      make([]calendarMonthResponse, 0, len(cal.Months)),
		ExpandedDay: cal.ExpandedDay,
	}
	for _, m := range cal.Months {
		month := calendarMonthResponse{MonthLabel: m.MonthLabel}
		for _, d := range m.Days {
			day := calendarDayResponse{
				DayKey:   d.DayKey,
				DayLabel: d.DayLabel,
				Events:   make([]calendarEventResponse, 0, len(d.Events)),
			}
			for _, ev := range d.Events {
				day.Events = append(day.Events, calendarEventResponse{
					Event:    ev,
					URL:      eventURL(ev.Slug),
					DateTime: datefmt.FormatDateTimeRange(ev.Details.StartDateTime, ev.Details.EndDateTime, mode),
				})
			}
			month.Days = append(month.Days, day)
		}
		resp.Months = append(resp.Months, month)
	}
	return resp
}

type healthResponse struct {
	Status string        `json:"status"`
	CMS    *probe.Status `json:"cms,omitempty"`
}

// Health はプロセスの生存とCMSプローブの直近結果を返す。
// CMSの状態にかかわらずステータスは200を返す。
// GET /health
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.health != nil {
		st := h.health.Status()
		resp.CMS = &st
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(resp)
}
