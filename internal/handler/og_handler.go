package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/ogimage"
	"github.com/hayart/web/internal/site"
)

// OGImageHandler はSNS共有用のプレビュー画像を返すHTTPハンドラー。
// 記事・イベント・ページが見つからない場合も「Not Found」カードを描画する。
type OGImageHandler struct {
	images OGImageServiceInterface
	events EventServiceInterface
	posts  PostServiceInterface
	pages  PageServiceInterface
	site   SiteServiceInterface
	loc    *time.Location
}

// NewOGImageHandler はOGImageHandlerを生成する。
func NewOGImageHandler(
	images OGImageServiceInterface,
	events EventServiceInterface,
	posts PostServiceInterface,
	pages PageServiceInterface,
	siteSvc SiteServiceInterface,
	loc *time.Location,
) *OGImageHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OGImageHandler{
		images: images,
		events: events,
		posts:  posts,
		pages:  pages,
		site:   siteSvc,
		loc:    loc,
	}
}

// Home はトップページのプレビュー画像を返す。
// GET /opengraph-image.png
func (h *OGImageHandler) Home(w http.ResponseWriter, r *http.Request) {
	settings, err := h.site.Settings(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "サイト設定を取得できないため既定値を使用します", slog.String("error", err.Error()))
		settings = site.DefaultSettings()
	}
	h.render(w, r, ogimage.HomeCard(settings))
}

// BlogIndex はニュース一覧のプレビュー画像を返す。
// GET /blog/opengraph-image.png
func (h *OGImageHandler) BlogIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ogimage.BlogIndexCard())
}

// Post は記事のプレビュー画像を返す。
// GET /blog/{slug}/opengraph-image.png
func (h *OGImageHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "slug"))
	if err = ignoreNotFound(err); err != nil {
		handleAPIError(w, r, err)
		return
	}
	h.render(w, r, ogimage.PostCard(post, h.loc))
}

// Event はイベントのプレビュー画像を返す。
// GET /event/{slug}/opengraph-image.png
func (h *OGImageHandler) Event(w http.ResponseWriter, r *http.Request) {
	ev, err := h.events.Get(r.Context(), chi.URLParam(r, "slug"))
	if err = ignoreNotFound(err); err != nil {
		handleAPIError(w, r, err)
		return
	}
	h.render(w, r, ogimage.EventCard(ev))
}

// Page は固定ページのプレビュー画像を返す。
// GET /{slug}/opengraph-image.png
func (h *OGImageHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Get(r.Context(), chi.URLParam(r, "slug"))
	if err = ignoreNotFound(err); err != nil {
		handleAPIError(w, r, err)
		return
	}
	h.render(w, r, ogimage.PageCard(page))
}

func (h *OGImageHandler) render(w http.ResponseWriter, r *http.Request, card ogimage.Card) {
	if !h.images.Enabled() {
		handleAPIError(w, r, model.NewOGImageDisabledError())
		return
	}

	png, err := h.images.Render(r.Context(), card)
	if err != nil {
		if errors.Is(err, ogimage.ErrDisabled) {
			handleAPIError(w, r, model.NewOGImageDisabledError())
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		handleAPIError(w, r, model.NewInternalError())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// ignoreNotFound は未検出エラーをnilにする。
func ignoreNotFound(err error) error {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case model.ErrCodeEventNotFound, model.ErrCodePostNotFound, model.ErrCodePageNotFound:
		return nil
	}
	return err
}
