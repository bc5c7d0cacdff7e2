package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khoahotran/career-onboard/pkg/auth"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type RouterDeps struct {
	OnboardingHandler *OnboardingHandler
	HomeHandler       *HomeHandler
	JWTService        *auth.JWTService
	Logger            logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ErrorMiddleware(d.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		private := api.Group("/")
		private.Use(AuthMiddleware(d.JWTService, d.Logger))
		{
			private.GET("/home", d.HomeHandler.GetHome)

			onboarding := private.Group("/onboarding")
			{
				onboarding.POST("/profile", d.OnboardingHandler.UpdateProfile)
				onboarding.GET("/status", d.OnboardingHandler.GetOnboardingStatus)
			}
		}
	}

	return router
}
