package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hayart/web/internal/middleware"
	"github.com/hayart/web/internal/model"
)

// handleAPIError はサービス層のエラーをJSONのエラーレスポンスに変換する。
func handleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(r, err)
	middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
}

// toAPIError はエラーをAPIErrorに変換する。
// APIError以外はCMSへの問い合わせ失敗とみなし、詳細はログのみに記録する。
func toAPIError(r *http.Request, err error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	slog.ErrorContext(r.Context(), "content request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	return model.NewCMSUnavailableError()
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEventNotFound, model.ErrCodePostNotFound, model.ErrCodePageNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	case model.ErrCodeInvalidImageURL:
		return http.StatusForbidden
	case model.ErrCodeCMSUnavailable, model.ErrCodeImageFetchFailed:
		return http.StatusBadGateway
	case model.ErrCodeOGImageDisabled:
		return http.StatusNotFound
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
