// Package dto はprojectionフィーチャーのHTTPレスポンス型を定義します。
package dto

import "dividend_backend/internal/feature/projection/usecase"

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// RefreshErrorResponse は計算は完了したが保存に失敗した場合のレスポンスです。
type RefreshErrorResponse struct {
	Error  string                `json:"error"`
	Result usecase.RefreshResult `json:"result"`
}
