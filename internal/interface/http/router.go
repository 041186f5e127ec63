package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-wardrobe/internal/infra/config"
)

// multipartOverhead leaves room for form boundaries and headers around the image.
const multipartOverhead = 1 << 20

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = cfg.Wardrobe.MaxImageBytes + multipartOverhead
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api/v1")
	{
		api.POST("/upload", bodyLimitMiddleware(cfg.Wardrobe.MaxImageBytes+multipartOverhead), handler.Upload)
		api.GET("/wardrobe", handler.Wardrobe)
		api.GET("/wardrobe/:category", handler.WardrobeCategory)
		api.GET("/clothes/:id", handler.GetClothes)
		api.PUT("/clothes/:id", handler.UpdateClothes)
		api.DELETE("/clothes/:id", handler.DeleteClothes)
		api.GET("/images/:key", handler.Image)

		api.GET("/weather", handler.Weather)
		api.GET("/weather/suggestion", handler.WeatherSuggestion)
		api.GET("/cities", handler.Cities)
		api.GET("/recommendation", handler.Recommendation)

		api.GET("/config", handler.GetConfig)
		api.POST("/config", handler.UpdateConfig)
		api.GET("/models", handler.Models)
		api.POST("/test-connection", handler.TestConnection)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
