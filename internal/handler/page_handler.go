package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/metadata"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/security"
	"github.com/hayart/web/internal/site"
)

// 各ページの取得件数。
const (
	homeHeroLimit     = 5
	homeNewsLimit     = 3
	homeCalendarLimit = 20
	archiveLimit      = 100
)

// PageHandlerConfig はHTMLページの生成に必要な設定。
type PageHandlerConfig struct {
	BaseURL string
	// Location は記事の公開日時を表示するタイムゾーン。
	Location *time.Location
	// OGImages はプレビュー画像のURLを<head>に出力するかどうか。
	OGImages bool
}

// PageHandler はサイトのHTMLページを返すHTTPハンドラー。
type PageHandler struct {
	events    EventServiceInterface
	posts     PostServiceInterface
	pages     PageServiceInterface
	site      SiteServiceInterface
	sanitizer security.ContentSanitizer
	config    PageHandlerConfig
	now       func() time.Time
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(
	events EventServiceInterface,
	posts PostServiceInterface,
	pages PageServiceInterface,
	siteSvc SiteServiceInterface,
	sanitizer security.ContentSanitizer,
	config PageHandlerConfig,
) *PageHandler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &PageHandler{
		events:    events,
		posts:     posts,
		pages:     pages,
		site:      siteSvc,
		sanitizer: sanitizer,
		config:    config,
		now:       time.Now,
	}
}

// chrome はヘッダー・フッターに表示するサイト共通データ。
type chrome struct {
	settings model.Settings
	social   []socialLinkView
}

// fanOut は関数群を並行に実行し、すべての完了を待つ。
func fanOut(fns ...func()) {
	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			f()
		}(fn)
	}
	wg.Wait()
}

// loadChrome はサイト設定とSNSリンクを取得する。
// どちらもページ本体の表示には必須でないため、失敗してもログに残して既定値で続ける。
func (h *PageHandler) loadChrome(ctx context.Context) chrome {
	var (
		c         chrome
		settingsE error
		socialE   error
		links     []model.SocialLink
	)
	fanOut(
		func() { c.settings, settingsE = h.site.Settings(ctx) },
		func() { links, socialE = h.site.SocialLinks(ctx, site.DefaultSocialLinkLimit) },
	)

	if settingsE != nil {
		slog.WarnContext(ctx, "サイト設定を取得できないため既定値を使用します", slog.String("error", settingsE.Error()))
		c.settings = site.DefaultSettings()
	}
	if socialE != nil {
		slog.WarnContext(ctx, "SNSリンクを取得できませんでした", slog.String("error", socialE.Error()))
	}
	c.social = newSocialLinkViews(links)
	return c
}

// layout はページ共通のレイアウトデータを組み立てる。titleが空の場合はサイト名だけを使う。
func (h *PageHandler) layout(c chrome, path string, meta pageMeta, body any) layoutView {
	if meta.OGTitle == "" {
		meta.OGTitle = c.settings.Title
	}
	if meta.Title == "" {
		meta.Title = c.settings.Title
	} else {
		meta.Title = meta.Title + " | " + c.settings.Title
	}
	if meta.Description == "" {
		meta.Description = c.settings.Description
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	meta.Canonical = metadata.AbsoluteURL(path, h.config.BaseURL)
	if h.config.OGImages {
		ogPath := path + "/opengraph-image.png"
		if path == "/" {
			ogPath = "/opengraph-image.png"
		}
		meta.OGImage = metadata.AbsoluteURL(ogPath, h.config.BaseURL)
	}

	return layoutView{
		Site:        c.settings,
		SocialLinks: c.social,
		Meta:        meta,
		Year:        h.now().In(h.config.Location).Year(),
		Body:        body,
	}
}

// renderError はエラーページを返す。未検出は404、CMS障害は502になる。
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, c chrome, err error) {
	apiErr := toAPIError(r, err)
	status := mapAPIErrorToHTTPStatus(apiErr)

	view := errorView{
		Status:  status,
		Title:   errorTitle(apiErr),
		Message: apiErr.Message,
		Action:  apiErr.Action,
	}
	renderView(w, r, status, viewError, h.layout(c, r.URL.Path, pageMeta{Title: view.Title}, view))
}

func errorTitle(apiErr *model.APIError) string {
	switch apiErr.Code {
	case model.ErrCodeEventNotFound:
		return "Event Not Found"
	case model.ErrCodePostNotFound:
		return "Post Not Found"
	case model.ErrCodePageNotFound:
		return "Page Not Found"
	case model.ErrCodeCMSUnavailable:
		return "Content Unavailable"
	default:
		return "Something Went Wrong"
	}
}

func (h *PageHandler) sanitize(html string) template.HTML {
	return template.HTML(h.sanitizer.Sanitize(html))
}

func (h *PageHandler) newsCards(posts []model.Post) []newsCardView {
	cards := make([]newsCardView, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, newsCardView{
			Title:    p.DisplayTitle(),
			URL:      postURL(p.Slug),
			ImageURL: proxiedImageURL(p.FeaturedImageURL),
			Excerpt:  h.sanitize(p.Excerpt),
		})
	}
	return cards
}

// Home はトップページ（ヒーロースライダー・ニュース・カレンダー）を返す。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		c                  chrome
		view               homeView
		heroE, newsE, calE error
		heroEvents         []model.Event
		latestPosts        []model.Post
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() { heroEvents, heroE = h.events.Hero(ctx, homeHeroLimit) },
		func() { latestPosts, newsE = h.posts.List(ctx, homeNewsLimit) },
		func() {
			cal, err := h.events.Calendar(ctx, homeCalendarLimit)
			view.Calendar, calE = newCalendarView(cal), err
		},
	)

	for _, err := range []error{heroE, newsE, calE} {
		if err != nil {
			h.renderError(w, r, c, err)
			return
		}
	}

	for _, ev := range heroEvents {
		view.Hero = append(view.Hero, newHeroSlideView(ev))
	}
	view.News = h.newsCards(latestPosts)

	renderView(w, r, http.StatusOK, viewHome, h.layout(c, "/", pageMeta{}, view))
}

// BlogIndex はニュース一覧ページを返す。
// GET /blog
func (h *PageHandler) BlogIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		c     chrome
		posts []model.Post
		err   error
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() { posts, err = h.posts.List(ctx, archiveLimit) },
	)
	if err != nil {
		h.renderError(w, r, c, err)
		return
	}

	meta := pageMeta{
		Title:       "News",
		OGTitle:     "Latest News",
		Description: "Stay updated with the latest from HayArt Cultural Centre",
	}
	renderView(w, r, http.StatusOK, viewBlog, h.layout(c, "/blog", meta, blogView{Posts: h.newsCards(posts)}))
}

// Post は記事詳細ページを返す。
// GET /blog/{slug}
func (h *PageHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		c    chrome
		post *model.PostDetail
		err  error
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() { post, err = h.posts.Get(ctx, slug) },
	)
	if err != nil {
		h.renderError(w, r, c, err)
		return
	}

	view := postView{
		Title:    post.DisplayTitle(),
		ImageURL: proxiedImageURL(post.FeaturedImageURL),
		Content:  h.sanitize(post.Content),
	}
	meta := pageMeta{
		Title:       view.Title,
		OGTitle:     view.Title,
		Description: metadata.GenerateDescription(post.Excerpt, post.Content, "Read this article on HayArt Cultural Centre"),
		OGType:      "article",
	}
	if t, perr := datefmt.ParsePostDate(post.Date, h.config.Location); perr == nil {
		view.Date = datefmt.FormatPostDateIn(post.Date, h.config.Location)
		view.DateISO = t.Format(time.RFC3339)
		meta.PublishedTime = view.DateISO
	}

	renderView(w, r, http.StatusOK, viewPost, h.layout(c, postURL(slug), meta, view))
}

// EventIndex はイベント一覧（カレンダー）ページを返す。
// GET /event
func (h *PageHandler) EventIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		c    chrome
		view eventsView
		err  error
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() {
			cal, cerr := h.events.Calendar(ctx, archiveLimit)
			view.Calendar, err = newCalendarView(cal), cerr
		},
	)
	if err != nil {
		h.renderError(w, r, c, err)
		return
	}
	view.ICSURL = "/event/calendar.ics"

	meta := pageMeta{
		Title:       "Events",
		OGTitle:     "Events",
		Description: "Exhibitions, concerts and workshops at HayArt Cultural Centre",
	}
	renderView(w, r, http.StatusOK, viewEvents, h.layout(c, "/event", meta, view))
}

// Event はイベント詳細ページを返す。日時は詳細形式で表示し、導出できない部分は省略する。
// GET /event/{slug}
func (h *PageHandler) Event(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		c   chrome
		ev  *model.EventDetail
		err error
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() { ev, err = h.events.Get(ctx, slug) },
	)
	if err != nil {
		h.renderError(w, r, c, err)
		return
	}

	var types []string
	for _, t := range ev.EventTypes {
		if t != "" {
			types = append(types, t)
		}
	}

	view := eventView{
		Title:    ev.DisplayTitle(),
		ImageURL: proxiedImageURL(ev.FeaturedImageURL),
		DateTime: datefmt.FormatDateTimeRange(ev.Details.StartDateTime, ev.Details.EndDateTime, datefmt.ModeDetail),
		Date:     datefmt.FormatDateRange(ev.Details.StartDateTime, ev.Details.EndDateTime),
		Time:     datefmt.FormatTimeRange(ev.Details.StartDateTime, ev.Details.EndDateTime),
		Location: ev.Details.Location,
		Price:    ev.Details.PriceInfo,
		Types:    types,
		Content:  h.sanitize(ev.Content),
		ICSURL:   eventURL(slug) + "/calendar.ics",
	}

	fallback := "Discover events at HayArt Cultural Centre."
	summary := datefmt.FormatDateRange(ev.Details.StartDateTime, ev.Details.EndDateTime)
	if ev.Details.Location != "" {
		summary = strings.TrimSpace(summary + " at " + ev.Details.Location)
	}
	if summary != "" {
		fallback = summary + ". " + fallback
	}
	meta := pageMeta{
		Title:       view.Title,
		OGTitle:     view.Title,
		Description: metadata.GenerateDescription(ev.Content, "", fallback),
		OGType:      "article",
	}

	renderView(w, r, http.StatusOK, viewEvent, h.layout(c, eventURL(slug), meta, view))
}

// Page はWordPressの固定ページを返す。
// GET /{slug}
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		c    chrome
		page *model.Page
		err  error
	)
	fanOut(
		func() { c = h.loadChrome(ctx) },
		func() { page, err = h.pages.Get(ctx, slug) },
	)
	if err != nil {
		h.renderError(w, r, c, err)
		return
	}

	view := staticPageView{
		Title:    page.DisplayTitle(),
		ImageURL: proxiedImageURL(page.FeaturedImageURL),
		Content:  h.sanitize(page.Content),
	}
	meta := pageMeta{
		Title:       view.Title,
		OGTitle:     view.Title,
		Description: metadata.GenerateDescription("", page.Content, "Discover more at HayArt Cultural Centre"),
	}

	renderView(w, r, http.StatusOK, viewPage, h.layout(c, "/"+slug, meta, view))
}

// NotFound はどのルートにも一致しないリクエストに404ページを返す。
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	c := h.loadChrome(r.Context())
	h.renderError(w, r, c, model.NewPageNotFoundError(r.URL.Path))
}
