// Package metadata はページのメタデータ（説明文・絶対URL）生成に使うテキスト処理を提供する。
package metadata

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DescriptionLength はメタディスクリプションの最大文字数（rune数）。
const DescriptionLength = 160

// entityReplacer はWordPressが出力する代表的な実体参照のみを展開する。
// 表にない実体参照はそのまま残す。
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#039;", "'",
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
)

// DecodeHTMLEntities は固定の実体参照表に従ってテキストをデコードする。
func DecodeHTMLEntities(text string) string {
	return entityReplacer.Replace(text)
}

// StripHTMLTags はHTMLからタグとコメントを取り除き、前後の空白を削ってから実体参照をデコードする。
// 隣接するブロック要素の間に空白は補わない。
func StripHTMLTags(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return DecodeHTMLEntities(strings.TrimSpace(b.String()))
		case html.TextToken:
			// Text()は全実体参照を展開してしまうため生のバイト列を使う
			b.Write(z.Raw())
		}
	}
}

// TruncateText はテキストがmaxLength文字を超える場合に切り詰めて "..." を付ける。
// 文字数はrune単位で数える。
func TruncateText(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}

// GenerateDescription は抜粋、本文、fallbackの順に最初の空でない値から説明文を作る。
// HTMLを取り除いて160文字に切り詰める。fallbackはそのまま返す。
func GenerateDescription(excerpt, content, fallback string) string {
	if excerpt != "" {
		return TruncateText(StripHTMLTags(excerpt), DescriptionLength)
	}
	if content != "" {
		return TruncateText(StripHTMLTags(content), DescriptionLength)
	}
	return fallback
}

// AbsoluteURL はpathをbaseURL基準の絶対URLにする。
// 既にhttp(s)の絶対URLであればそのまま返す。
func AbsoluteURL(path, baseURL string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}
