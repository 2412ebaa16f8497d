package model

// Post はブログ記事の一覧用サマリーを表す。
type Post struct {
	Title            string
	Slug             string
	Excerpt          string // CMSが返すHTML断片
	Date             string // 公開日時（WordPressの "2024-01-15T10:00:00" 形式）
	FeaturedImageURL string
}

// PostDetail は記事詳細ページ用に本文を含む記事。
type PostDetail struct {
	Post
	Content string
}

// DisplayTitle はタイトル未設定の場合に代替タイトルを返す。
func (p Post) DisplayTitle() string {
	if p.Title == "" {
		return "Untitled Post"
	}
	return p.Title
}

// Page はWordPressの固定ページを表す。
type Page struct {
	Title            string
	Slug             string
	Content          string
	FeaturedImageURL string
}

// DisplayTitle はタイトル未設定の場合に代替タイトルを返す。
func (p Page) DisplayTitle() string {
	if p.Title == "" {
		return "Untitled Page"
	}
	return p.Title
}
