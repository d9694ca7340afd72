package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/cookiecheck/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router
func SetupRouter(verifier Verifier, health service.VerifierHealth, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationMiddleware(), AccessLogMiddleware(log.Named("http")))

	handlers := NewHandlers(verifier, health)

	router.POST("/verify", handlers.Verify)

	hc := router.Group("/health")
	{
		hc.GET("", handlers.Health)
		hc.GET("/verifier", handlers.VerifierHealth)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
