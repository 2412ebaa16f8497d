package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hayart/web/internal/feed"
	"github.com/hayart/web/internal/ics"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/site"
)

// feedPostLimit はRSSフィードに含める記事数。
const feedPostLimit = 20

// ExportHandler はiCalendarとRSSの書き出しを返すHTTPハンドラー。
type ExportHandler struct {
	events EventServiceInterface
	posts  PostServiceInterface
	site   SiteServiceInterface
	ics    *ics.Exporter
	rss    *feed.Writer
}

// NewExportHandler はExportHandlerを生成する。
func NewExportHandler(
	events EventServiceInterface,
	posts PostServiceInterface,
	siteSvc SiteServiceInterface,
	baseURL string,
	loc *time.Location,
) *ExportHandler {
	return &ExportHandler{
		events: events,
		posts:  posts,
		site:   siteSvc,
		ics:    ics.NewExporter(baseURL, loc),
		rss:    feed.NewWriter(baseURL, loc),
	}
}

// settings はサイト設定を取得する。失敗した場合は既定値を使う。
func (h *ExportHandler) settings(r *http.Request) model.Settings {
	settings, err := h.site.Settings(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "サイト設定を取得できないため既定値を使用します", slog.String("error", err.Error()))
		return site.DefaultSettings()
	}
	return settings
}

// CalendarICS は全イベントのiCalendarを返す。
// GET /event/calendar.ics
func (h *ExportHandler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	var (
		settings model.Settings
		events   []model.Event
		err      error
	)
	fanOut(
		func() { settings = h.settings(r) },
		func() { events, err = h.events.List(r.Context(), archiveLimit) },
	)
	if err != nil {
		handleAPIError(w, r, err)
		return
	}

	writeICS(w, "events.ics", h.ics.Calendar(settings.Title+" Events", events))
}

// EventICS は1件のイベントのiCalendarを返す。開始日時が解析できないイベントは404とする。
// GET /event/{slug}/calendar.ics
func (h *ExportHandler) EventICS(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ev, err := h.events.Get(r.Context(), slug)
	if err != nil {
		handleAPIError(w, r, err)
		return
	}

	doc, ok := h.ics.Event(ev)
	if !ok {
		handleAPIError(w, r, model.NewEventNotFoundError(slug))
		return
	}
	writeICS(w, slug+".ics", doc)
}

func writeICS(w http.ResponseWriter, filename, doc string) {
	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write([]byte(doc))
}

// RSS は最新記事のRSS 2.0フィードを返す。
// GET /blog/feed.xml
func (h *ExportHandler) RSS(w http.ResponseWriter, r *http.Request) {
	var (
		settings model.Settings
		posts    []model.Post
		err      error
	)
	fanOut(
		func() { settings = h.settings(r) },
		func() { posts, err = h.posts.List(r.Context(), feedPostLimit) },
	)
	if err != nil {
		handleAPIError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.rss.Write(&buf, settings, posts); err != nil {
		slog.ErrorContext(r.Context(), "RSSの生成に失敗しました", slog.String("error", err.Error()))
		handleAPIError(w, r, model.NewInternalError())
		return
	}

	w.Header().Set("Content-Type", feed.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	buf.WriteTo(w)
}
