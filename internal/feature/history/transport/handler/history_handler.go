// Package handler は履歴フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dividend_backend/internal/feature/history/domain"
	"dividend_backend/internal/feature/history/transport/http/dto"
	"dividend_backend/internal/feature/history/usecase"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
)

// HistoryReader は履歴参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryReader interface {
	Load(ctx context.Context, date calendar.Date) (entity.Snapshot, error)
	Latest(ctx context.Context) (entity.Snapshot, error)
	List(ctx context.Context, from, to calendar.Date) (usecase.Listing, error)
	Summary(ctx context.Context) (usecase.Summary, error)
	Dates(ctx context.Context) ([]calendar.Date, error)
}

// TrendAnalyzer はトレンド分析のユースケースインターフェースです。
type TrendAnalyzer interface {
	Analyze(ctx context.Context, windowDays int) (usecase.TrendResult, error)
}

// HistoryHandler はスナップショット履歴とトレンドのHTTPリクエストを処理します。
type HistoryHandler struct {
	history     HistoryReader
	trend       TrendAnalyzer
	defaultDays int
}

// NewHistoryHandler は新しい HistoryHandler を生成します。
// defaultDays は days パラメータ省略時のトレンド期間です。
func NewHistoryHandler(history HistoryReader, trend TrendAnalyzer, defaultDays int) *HistoryHandler {
	if defaultDays <= 0 {
		defaultDays = usecase.DefaultTrendDays
	}
	return &HistoryHandler{history: history, trend: trend, defaultDays: defaultDays}
}

// List は期間内のスナップショット一覧を返します。
//
// エンドポイント例:
// GET /snapshots?from=2025-01-01&to=2025-01-31
func (h *HistoryHandler) List(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from must not be after to"})
		return
	}

	listing, err := h.history.List(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Latest は最新のスナップショットを返します。
//
// エンドポイント例:
// GET /snapshots/latest
func (h *HistoryHandler) Latest(c *gin.Context) {
	s, err := h.history.Latest(c.Request.Context())
	writeSnapshot(c, s, err)
}

// Get は指定日のスナップショットを返します。
//
// エンドポイント例:
// GET /snapshots/2025-01-08
func (h *HistoryHandler) Get(c *gin.Context) {
	date, err := calendar.Parse(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	s, err := h.history.Load(c.Request.Context(), date)
	writeSnapshot(c, s, err)
}

// Summary は保存件数と期間を返します。
//
// エンドポイント例:
// GET /history/summary
func (h *HistoryHandler) Summary(c *gin.Context) {
	sum, err := h.history.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Dates は保存済みの日付を昇順で返します。
//
// エンドポイント例:
// GET /snapshots/dates
func (h *HistoryHandler) Dates(c *gin.Context) {
	dates, err := h.history.Dates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if dates == nil {
		dates = []calendar.Date{}
	}
	c.JSON(http.StatusOK, dto.DatesResponse{Dates: dates})
}

// Trend は直近 days 日間の推移を返します。
//
// エンドポイント例:
// GET /trend?days=30
func (h *HistoryHandler) Trend(c *gin.Context) {
	days := h.defaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 3650 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be between 1 and 3650"})
			return
		}
		days = n
	}

	res, err := h.trend.Analyze(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeSnapshot(c *gin.Context, s entity.Snapshot, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, s)
	case errors.Is(err, domain.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

// dateQuery は任意の日付クエリを読み取ります。不正な値のときは 400 を書き込み false を返します。
func dateQuery(c *gin.Context, name string) (calendar.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return calendar.Date{}, true
	}
	d, err := calendar.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: name + ": " + err.Error()})
		return calendar.Date{}, false
	}
	return d, true
}
