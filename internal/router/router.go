package router

import (
	"github.com/paygate-next/internal/config"
	adminhandlers "github.com/paygate-next/internal/http/handlers/admin"
	publichandlers "github.com/paygate-next/internal/http/handlers/public"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	apiV1 := r.Group("/api/v1")
	{
		// 商户侧接口
		apiV1.POST("/pay", publicHandler.InitiatePay)

		// 管理端接口
		adminGroup := apiV1.Group("/admin")
		{
			adminGroup.POST("/login", adminHandler.Login)

			authed := adminGroup.Group("")
			authed.Use(AdminJWTAuthMiddleware(c.AuthService))
			{
				authed.GET("/pay-configs", adminHandler.ListPayConfigs)
				authed.POST("/pay-configs", adminHandler.CreatePayConfig)
				authed.GET("/pay-configs/:id", adminHandler.GetPayConfig)
				authed.PUT("/pay-configs/:id", adminHandler.UpdatePayConfig)
				authed.DELETE("/pay-configs/:id", adminHandler.DeletePayConfig)
			}
		}
	}

	return r
}
