package site

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SocialType はSNSリンクのアイコン種別。テンプレートではアイコンのクラス名として使う。
type SocialType string

// SocialTypeDefault は既知のプラットフォームに一致しないリンクの種別。
const SocialTypeDefault SocialType = "default"

// socialPlatforms は判定順に並べたプラットフォーム名。
// 先に一致したものを採用するため、順序を変えると判定結果が変わる。
var socialPlatforms = []SocialType{
	"linkedin",
	"facebook",
	"instagram",
	"twitter",
	"x",
	"youtube",
	"tiktok",
	"github",
	"reddit",
	"pinterest",
	"snapchat",
	"telegram",
	"whatsapp",
	"discord",
	"twitch",
	"medium",
	"behance",
	"dribbble",
	"vimeo",
	"spotify",
	"soundcloud",
	"patreon",
	"threads",
	"bluesky",
}

var lowerCaser = cases.Lower(language.Und)

// DetectSocialType はリンクのタイトルからSNSの種別を判定する。大文字小文字は区別しない。
// "x" はタイトルが "x" そのものか "x.com" を含む場合のみ一致する。
func DetectSocialType(title string) SocialType {
	normalized := strings.TrimSpace(lowerCaser.String(title))

	for _, platform := range socialPlatforms {
		if platform == "x" {
			if normalized == "x" || strings.Contains(normalized, "x.com") {
				return platform
			}
			continue
		}
		if strings.Contains(normalized, string(platform)) {
			return platform
		}
	}
	return SocialTypeDefault
}
