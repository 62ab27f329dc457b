// Package handler はprojectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dividend_backend/internal/feature/projection/transport/http/dto"
	"dividend_backend/internal/feature/projection/usecase"
)

// RefreshRunner は更新処理のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RefreshRunner interface {
	RunFile(ctx context.Context, path string, opts usecase.RefreshOptions) (usecase.RefreshResult, error)
}

// RefreshHandler は更新処理のHTTPリクエストを処理します。
type RefreshHandler struct {
	uc           RefreshRunner
	holdingsPath string
}

// NewRefreshHandler は設定された保有ファイルで更新処理を行う RefreshHandler を生成します。
func NewRefreshHandler(uc RefreshRunner, holdingsPath string) *RefreshHandler {
	return &RefreshHandler{uc: uc, holdingsPath: holdingsPath}
}

// Refresh は保有ファイルを読み込み、市場データ取得と計算を実行して結果をJSONで返します。
//
// エンドポイント例:
// POST /refresh?save=true&months=12
func (h *RefreshHandler) Refresh(c *gin.Context) {
	save, err := strconv.ParseBool(c.DefaultQuery("save", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "save must be a boolean"})
		return
	}
	months, err := strconv.Atoi(c.DefaultQuery("months", "0"))
	if err != nil || months < 0 || months > 120 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "months must be between 0 and 120"})
		return
	}

	res, err := h.uc.RunFile(c.Request.Context(), h.holdingsPath, usecase.RefreshOptions{Save: save, Months: months})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, usecase.ErrNoHoldings):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case res.Positions != nil:
		// 計算済みの結果は返す
		c.JSON(http.StatusInternalServerError, dto.RefreshErrorResponse{Error: err.Error(), Result: res})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
