package handler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hayart/web/internal/calendar"
	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/model"
	"github.com/hayart/web/internal/site"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// ページテンプレート名。templates/<name>.html.tmpl が "content" を定義する。
const (
	viewHome   = "home"
	viewBlog   = "blog"
	viewPost   = "post"
	viewEvents = "events"
	viewEvent  = "event"
	viewPage   = "page"
	viewError  = "error"
)

var pageTemplates = mustParseTemplates(viewHome, viewBlog, viewPost, viewEvents, viewEvent, viewPage, viewError)

// mustParseTemplates はレイアウトと部品を共有するページテンプレートを組み立てる。
func mustParseTemplates(names ...string) map[string]*template.Template {
	base := template.Must(template.New("layout").ParseFS(templateFS,
		"templates/layout.html.tmpl",
		"templates/partials.html.tmpl",
	))

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		pages[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html.tmpl"))
	}
	return pages
}

// layoutView はレイアウト全体に渡すデータ。Bodyは各ページの "content" に渡る。
type layoutView struct {
	Site        model.Settings
	SocialLinks []socialLinkView
	Meta        pageMeta
	Year        int
	Body        any
}

// pageMeta は<head>に出力するメタデータ。
type pageMeta struct {
	Title         string
	OGTitle       string
	Description   string
	Canonical     string
	OGType        string
	OGImage       string
	PublishedTime string
}

type socialLinkView struct {
	Title string
	URL   string
	Type  site.SocialType
}

type heroSlideView struct {
	Title    string
	URL      string
	ImageURL string
	Label    string
}

type eventCardView struct {
	Title    string
	URL      string
	ImageURL string
	Meta     string
	DateTime string
	Price    string
}

type newsCardView struct {
	Title    string
	URL      string
	ImageURL string
	Excerpt  template.HTML
}

type calendarView struct {
	Months []calendarMonthView
}

type calendarMonthView struct {
	Label string
	Days  []calendarDayView
}

type calendarDayView struct {
	Key      string
	Label    string
	Expanded bool
	Events   []eventCardView
}

type homeView struct {
	Hero     []heroSlideView
	News     []newsCardView
	Calendar calendarView
}

type blogView struct {
	Posts []newsCardView
}

type postView struct {
	Title    string
	ImageURL string
	Date     string
	DateISO  string
	Content  template.HTML
}

type eventsView struct {
	Calendar calendarView
	ICSURL   string
}

type eventView struct {
	Title    string
	ImageURL string
	DateTime string
	// Date と Time は情報バーに分けて表示する
	Date     string
	Time     string
	Location string
	Price    string
	Types    []string
	Content  template.HTML
	ICSURL   string
}

type staticPageView struct {
	Title    string
	ImageURL string
	Content  template.HTML
}

type errorView struct {
	Status  int
	Title   string
	Message string
	Action  string
}

// renderView はテンプレートをバッファに描画してからレスポンスを書き込む。
// 描画に失敗した場合は途中までのHTMLを返さず500にする。
func renderView(w http.ResponseWriter, r *http.Request, status int, name string, data layoutView) {
	t, ok := pageTemplates[name]
	if !ok {
		slog.ErrorContext(r.Context(), "unknown view", slog.String("view", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.ErrorContext(r.Context(), "テンプレートの描画に失敗しました",
			slog.String("view", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status >= 500 {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// proxiedImageURL はCMS画像を画像プロキシ経由のURLに変換する。空なら空を返す。
func proxiedImageURL(src string) string {
	if src == "" {
		return ""
	}
	return "/_img?url=" + url.QueryEscape(src)
}

func eventURL(slug string) string {
	return "/event/" + url.PathEscape(slug)
}

func postURL(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

// newEventCardView はカレンダー用のイベントカードを作る。
// 種別と会場は " • " で連結し、日時はカード形式で表示する。
func newEventCardView(ev model.Event) eventCardView {
	meta := make([]string, 0, len(ev.EventTypes)+1)
	for _, t := range ev.EventTypes {
		if t != "" {
			meta = append(meta, t)
		}
	}
	if ev.Details.Location != "" {
		meta = append(meta, ev.Details.Location)
	}

	return eventCardView{
		Title:    ev.DisplayTitle(),
		URL:      eventURL(ev.Slug),
		ImageURL: proxiedImageURL(ev.FeaturedImageURL),
		Meta:     strings.Join(meta, " • "),
		DateTime: datefmt.FormatDateTimeRange(ev.Details.StartDateTime, ev.Details.EndDateTime, datefmt.ModeCard),
		Price:    ev.Details.PriceInfo,
	}
}

func newHeroSlideView(ev model.Event) heroSlideView {
	var parts []string
	if r := datefmt.FormatDateRange(ev.Details.StartDateTime, ev.Details.EndDateTime); r != "" {
		parts = append(parts, r)
	}
	if ev.Details.Location != "" {
		parts = append(parts, ev.Details.Location)
	}
	return heroSlideView{
		Title:    ev.DisplayTitle(),
		URL:      eventURL(ev.Slug),
		ImageURL: proxiedImageURL(ev.FeaturedImageURL),
		Label:    strings.Join(parts, " • "),
	}
}

func newCalendarView(cal calendar.Calendar) calendarView {
	view := calendarView{Months: make([]calendarMonthView, 0, len(cal.Months))}
	for _, m := range cal.Months {
		month := calendarMonthView{Label: m.MonthLabel}
		for _, d := range m.Days {
			day := calendarDayView{
				Key:      d.DayKey,
				Label:    d.DayLabel,
				Expanded: d.DayKey == cal.ExpandedDay,
				Events:   make([]eventCardView, 0, len(d.Events)),
			}
			for _, ev := range d.Events {
				day.Events = append(day.Events, newEventCardView(ev))
			}
			month.Days = append(month.Days, day)
		}
		view.Months = append(view.Months, month)
	}
	return view
}

func newSocialLinkViews(links []model.SocialLink) []socialLinkView {
	views := make([]socialLinkView, 0, len(links))
	for _, l := range links {
		if l.URL == "" {
			continue
		}
		views = append(views, socialLinkView{
			Title: l.Title,
			URL:   l.URL,
			Type:  site.DetectSocialType(l.Title),
		})
	}
	return views
}
