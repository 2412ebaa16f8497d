package model

// Settings はサイト全体の基本設定（WordPressのgeneralSettings）を表す。
type Settings struct {
	Title       string
	Description string
	URL         string
}

// SocialLink はフッターに表示するSNSリンクを表す。
// Orderがnilのリンクは表示対象外。
type SocialLink struct {
	Title string
	URL   string
	Order *int
}
