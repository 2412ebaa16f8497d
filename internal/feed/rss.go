// Package feed はブログ記事のRSS 2.0フィードを生成する。
package feed

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hayart/web/internal/datefmt"
	"github.com/hayart/web/internal/metadata"
	"github.com/hayart/web/internal/model"
)

// ContentType はRSSレスポンスに付けるContent-Type。
const ContentType = "application/rss+xml; charset=utf-8"

// Path はフィードの公開パス。
const Path = "/blog/feed.xml"

// Writer は記事一覧をRSSに変換する。
type Writer struct {
	baseURL string
	loc     *time.Location
}

// NewWriter はWriterを生成する。
// locはオフセットなしの公開日時を解釈するタイムゾーン。
func NewWriter(baseURL string, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	return &Writer{baseURL: strings.TrimRight(baseURL, "/"), loc: loc}
}

// Build は記事一覧からRSSのchannelを組み立てる。
// 公開日時が解析できない記事はpubDateを省略する。
// lastBuildDateは最も新しい記事の公開日時とする。
func (w *Writer) Build(settings model.Settings, posts []model.Post) *feeds.RssFeed {
	f := &feeds.Feed{
		Title:       settings.Title + " News",
		Link:        &feeds.Link{Href: w.baseURL + "/blog"},
		Description: settings.Description,
		Items:       make([]*feeds.Item, 0, len(posts)),
	}

	for _, p := range posts {
		link := w.baseURL + "/blog/" + url.PathEscape(p.Slug)
		item := &feeds.Item{
			Title:       p.DisplayTitle(),
			Link:        &feeds.Link{Href: link},
			Description: metadata.GenerateDescription(p.Excerpt, "", ""),
			Id:          link,
		}
		if t, err := datefmt.ParsePostDate(p.Date, w.loc); err == nil {
			item.Created = t
			if t.After(f.Updated) {
				f.Updated = t
			}
		}
		f.Items = append(f.Items, item)
	}

	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Language = "en"
	return rss
}

// Write は記事一覧をRSS文書としてoutに書き出す。
func (w *Writer) Write(out io.Writer, settings model.Settings, posts []model.Post) error {
	if err := feeds.WriteXML(w.Build(settings, posts), out); err != nil {
		return fmt.Errorf("RSSの書き込みに失敗しました: %w", err)
	}
	return nil
}
