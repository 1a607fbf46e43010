package http

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/pkg/auth"
	"github.com/hurmain7/devconnect/pkg/logger"
)

type RouterDeps struct {
	ProfileHandler *ProfileHandler
	GithubHandler  *GithubHandler
	JWTService     *auth.JWTService
	Revoker        service.SessionRevoker
	AllowedOrigins []string
	Logger         logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))
	router.Use(ErrorMiddleware(d.Logger))

	authMiddleware := AuthMiddleware(d.JWTService, d.Revoker, d.Logger)
	health := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) }

	router.GET("/health", health)

	api := router.Group("/api")
	{
		api.GET("/health", health)

		profile := api.Group("/profile")
		{
			profile.GET("", d.ProfileHandler.ListProfiles)
			profile.GET("/user/:user_id", d.ProfileHandler.GetProfilesByUser)
			profile.GET("/github/:username", d.GithubHandler.ListRepos)

			private := profile.Group("")
			private.Use(authMiddleware)
			{
				private.GET("/me", d.ProfileHandler.GetMyProfile)
				private.POST("", d.ProfileHandler.UpsertProfile)
				private.DELETE("", d.ProfileHandler.DeleteAccount)

				private.PUT("/experience", d.ProfileHandler.AddExperience)
				private.DELETE("/experience/:exp_id", d.ProfileHandler.RemoveExperience)

				private.PUT("/education", d.ProfileHandler.AddEducation)
				private.DELETE("/education/:edu_id", d.ProfileHandler.RemoveEducation)
			}
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", headerAuthToken)
	return config
}
