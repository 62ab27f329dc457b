package dto

import "dividend_backend/internal/shared/calendar"

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// DatesResponse は保存済みスナップショットの日付一覧です。
type DatesResponse struct {
	Dates []calendar.Date `json:"dates"`
}
