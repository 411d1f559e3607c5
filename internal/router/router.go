package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/handler"
	"tradebook/internal/middleware"
)

type Config struct {
	TradeHandler   *handler.TradeHandler
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "tradebook is up"})
	})

	api := router.Group("/api/")
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	registerTradeRoutes(api, cfg.TradeHandler)

	return router
}
