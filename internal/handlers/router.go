package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	eng := gin.New()
	eng.HandleMethodNotAllowed = true

	eng.Use(
		requestLogger(logger.Named("http")),
		observe(),
		gin.CustomRecovery(recoverer(logger.Named("http"))),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:   []string{"Content-Length"},
			MaxAge:          12 * time.Hour,
		}),
	)

	eng.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "Route not found")
	})
	eng.NoMethod(func(c *gin.Context) {
		abort(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	eng.GET("/", h.Home)
	eng.GET("/health", h.Health)
	eng.POST("/predict", h.Predict)
	eng.POST("/reload", h.Reload)
	eng.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return eng
}
