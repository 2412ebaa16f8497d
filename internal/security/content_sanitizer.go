// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer はCMSから取得した本文HTMLをページに埋め込む前にサニタイズする。
// bluemondayの許可リストベースのポリシーで、WordPressのブロックエディタが出力する
// 構造（見出し・図版・表など）は残しつつ、スクリプトやイベント属性を除去する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
type ContentSanitizer interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerの実装。
// bluemondayのポリシーはSanitize呼び出しに対してスレッドセーフ。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はCMS本文用のポリシーを構築してContentSanitizerを生成する。
//   - 許可タグ: 段落・見出し(h2-h6)・リスト・引用・整形済み・強調・図版・表
//   - 禁止: script, iframe, style, form と全てのon*イベント属性
//   - URLスキーム: http, https, mailto（相対URLも許可）
//   - 外部リンク: target="_blank" と rel="noopener noreferrer" を自動付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr", "ul", "ol", "li",
		"h2", "h3", "h4", "h5", "h6",
		"blockquote", "cite", "pre", "code",
		"strong", "em", "b", "i", "u", "s", "sub", "sup", "small",
		"figure", "figcaption",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td",
	)
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	p.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")

	// WordPressのブロック用クラス（wp-block-image, aligncenter 等）は見た目の調整に使う
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements(
		"p", "figure", "figcaption", "img", "blockquote", "table", "ul", "ol",
	)

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
