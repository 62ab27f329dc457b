package router

import (
	"github.com/gin-gonic/gin"

	historyhandler "dividend_backend/internal/feature/history/transport/handler"
	projectionhandler "dividend_backend/internal/feature/projection/transport/handler"
	"dividend_backend/internal/platform/http/handler"
)

func NewRouter(refresh *projectionhandler.RefreshHandler, history *historyhandler.HistoryHandler,
	checks ...handler.Check) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	health := handler.Health(checks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// 市場データを取得して評価・配当予測を計算（save=true で履歴に保存）
	r.POST("/refresh", refresh.Refresh)

	// スナップショット履歴
	r.GET("/snapshots", history.List)
	r.GET("/snapshots/latest", history.Latest)
	r.GET("/snapshots/dates", history.Dates)
	r.GET("/snapshots/:date", history.Get)
	r.GET("/history/summary", history.Summary)

	// 評価額と年間配当の推移
	r.GET("/trend", history.Trend)

	return r
}
