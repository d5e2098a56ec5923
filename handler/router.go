package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/middleware"
	"github.com/weddingguard/backend/web"
)

// NewRouter assembles the middleware chain and every route.
func NewRouter(cfg *config.Config, h *Handler, sessions *middleware.SessionManager, limiter *middleware.RateLimiter) (*gin.Engine, error) {
	static, err := web.StaticFS()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Analysis.MaxUploadBytes

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.AllowOrigins))
	router.Use(middleware.CacheControl())
	router.StaticFS("/static", http.FS(static))
	router.GET("/health", h.Health)

	app := router.Group("/")
	app.Use(sessions.Session())
	{
		app.GET("/", h.Index)
		app.GET("/section/:section", h.Section)
		app.POST("/analyze", h.Analyze(limiter))
		app.POST("/example", h.Example)
		app.GET("/report/tab/:tab", h.Tab)
		app.POST("/report/close", h.CloseReport)
		app.GET("/reports/:id", h.Archived)
	}

	api := app.Group("/api")
	{
		api.POST("/analyze", middleware.RateLimit(limiter), h.APIAnalyze)
		api.GET("/example", h.APIExample)
		api.GET("/state", h.APIState)
		api.GET("/reports/:id", h.APIArchived)
	}

	return router, nil
}
