package router

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/handler"
)

func registerTradeRoutes(router *gin.RouterGroup, tradeHandler *handler.TradeHandler) {
	trades := router.Group("/trades")
	{
		trades.POST("/upload", tradeHandler.Upload)
		trades.POST("/balance", tradeHandler.Balance)
	}
}
