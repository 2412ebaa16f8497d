// Package ogimage はSNS共有用のプレビュー画像（1200×630のPNG）を生成する。
//
// カードの内容をHTMLレイアウトに流し込み、ヘッドレスChromiumでスクリーンショットを撮る。
package ogimage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"unicode/utf8"
)

// 画像サイズ。
const (
	Width  = 1200
	Height = 630
)

// DefaultFooter はカード下部に表示するサイト名。
const DefaultFooter = "HayArt Cultural Centre"

//go:embed templates/card.html.tmpl
var templateFS embed.FS

var cardTemplate = template.Must(template.ParseFS(templateFS, "templates/card.html.tmpl"))

// Card はプレビュー画像の内容。
// Centeredはトップページや一覧ページ向けの中央寄せレイアウトを選ぶ。
type Card struct {
	Badge    string
	Title    string
	Subtitle string
	Metadata string
	Footer   string
	Centered bool
}

type cardView struct {
	Card
	Plain      bool
	Width      int
	Height     int
	TitleSize  int
	FooterSize int
}

// HTML はカードをレイアウトに流し込んだHTML文書を返す。
func (c Card) HTML() (string, error) {
	if c.Footer == "" {
		c.Footer = DefaultFooter
	}

	v := cardView{
		Card:       c,
		Plain:      c.Badge == "" && c.Subtitle == "",
		Width:      Width,
		Height:     Height,
		TitleSize:  72,
		FooterSize: 24,
	}
	switch {
	case c.Centered:
		v.TitleSize = 96
		v.FooterSize = 28
	case utf8.RuneCountInString(c.Title) > 50:
		v.TitleSize = 64
	}
	if v.Plain {
		v.FooterSize = 28
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("OG画像テンプレートの描画に失敗しました: %w", err)
	}
	return buf.String(), nil
}
