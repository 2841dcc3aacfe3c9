package handler

import (
	"github.com/chaos-io/passport-photo/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter 注册全部路由
func NewRouter(passportHandler *PassportHandler, systemHandler *SystemHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/", passportHandler.Index)
	r.GET("/health", systemHandler.Health)
	r.GET("/version", systemHandler.Version)

	api := r.Group("/api/v1")
	{
		api.GET("/presets", passportHandler.Presets)
		api.POST("/passport", passportHandler.Generate)
	}

	return r
}
