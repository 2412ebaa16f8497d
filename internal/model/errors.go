// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// JSONエンドポイントとHTMLのエラーページの両方で使用する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: content, validation, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEventNotFound     = "EVENT_NOT_FOUND"
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodePageNotFound      = "PAGE_NOT_FOUND"
	ErrCodeCMSUnavailable    = "CMS_UNAVAILABLE"
	ErrCodeInvalidImageURL   = "INVALID_IMAGE_URL"
	ErrCodeImageFetchFailed  = "IMAGE_FETCH_FAILED"
	ErrCodeInvalidParameter  = "INVALID_PARAMETER"
	ErrCodeOGImageDisabled   = "OG_IMAGE_DISABLED"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// NewEventNotFoundError はイベント未検出エラーを生成する。
func NewEventNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("Event not found: %s", slug),
		Category: "content",
		Action:   "Check the event calendar for current events.",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("Post not found: %s", slug),
		Category: "content",
		Action:   "Browse the news archive for the latest articles.",
	}
}

// NewPageNotFoundError はページ未検出エラーを生成する。
func NewPageNotFoundError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodePageNotFound,
		Message:  fmt.Sprintf("Page not found: %s", slug),
		Category: "content",
		Action:   "Return to the home page.",
	}
}

// NewCMSUnavailableError はCMSへの問い合わせ失敗エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewCMSUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeCMSUnavailable,
		Message:  "Content is temporarily unavailable.",
		Category: "upstream",
		Action:   "Please try again in a few moments.",
	}
}

// NewInvalidImageURLError は画像プロキシの対象外URLエラーを生成する。
func NewInvalidImageURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImageURL,
		Message:  fmt.Sprintf("Image URL is not allowed: %s", reason),
		Category: "validation",
		Action:   "Only images uploaded to the CMS can be displayed.",
	}
}

// NewImageFetchFailedError は画像取得失敗エラーを生成する。
func NewImageFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeImageFetchFailed,
		Message:  "Failed to fetch the image.",
		Category: "upstream",
		Action:   "Please try again later.",
	}
}

// NewInvalidParameterError はクエリパラメータ不正エラーを生成する。
func NewInvalidParameterError(name, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidParameter,
		Message:  fmt.Sprintf("Invalid value for %s: %q", name, value),
		Category: "validation",
		Action:   "Check the request parameters.",
	}
}

// NewOGImageDisabledError はOG画像生成が無効な場合のエラーを生成する。
func NewOGImageDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeOGImageDisabled,
		Message:  "Social preview images are disabled.",
		Category: "system",
		Action:   "Enable OG_IMAGE_ENABLED to render preview images.",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please try again later.",
	}
}
