package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/engine"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/internal/handler"
	"github.com/adebolajoseph/Loteraa-wallet-sdk/pkg/monitor"
)

// NewRouter 组装全部 HTTP 路由与中间件
func NewRouter(e *engine.Engine) *gin.Engine {
	// 初始化业务指标
	monitor.Init()

	r := gin.Default()
	r.Use(monitor.PrometheusMiddleware())

	// 基础设施端点
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessions := handler.NewSessionHandler(e)

	v1 := r.Group("/api/v1")
	{
		sessionGroup := v1.Group("/session")
		{
			sessionGroup.GET("", sessions.Snapshot)
			sessionGroup.POST("/connect", sessions.Connect)
			sessionGroup.POST("/disconnect", sessions.Disconnect)
			sessionGroup.POST("/balance/refresh", sessions.RefreshBalance)
		}

		txGroup := v1.Group("/transactions")
		{
			txGroup.GET("", sessions.Transactions)
			txGroup.POST("/send", sessions.Send)
			txGroup.POST("/estimate", sessions.EstimateGas)
			txGroup.GET("/gas-price", sessions.GasPrice)
		}

		walletGroup := v1.Group("/wallet")
		{
			walletGroup.POST("/new", sessions.CreateWallet)
			walletGroup.POST("/validate-address", sessions.ValidateAddress)
		}
	}

	return r
}
