package api

import (
	"net/http"

	"portfolio_tracker/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures the Gin router with middleware and all engine
// routes.
func SetupRouter(handler *PortfolioHandler, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit))
	{
		v1.GET("/chains", handler.ListChains)
		v1.GET("/chains/:chainId/tokens", handler.ListPresetTokens)
		v1.GET("/wallet/:address/portfolio", handler.GetPortfolio)
		v1.GET("/wallet/:address/native", handler.GetNativeBalance)
		v1.DELETE("/wallet/:address/cache", handler.InvalidateWallet)
		v1.GET("/cache/stats", handler.GetCacheStats)
	}

	return router
}
