package main

import (
	"net/http"
	"slices"

	_ "github.com/Stefhermann/GOpherARun/docs"
	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/Stefhermann/GOpherARun/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func newRouter(h *handler.Handler, provider auth.IdentityProvider) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logrus.StandardLogger().Writer()), gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	h.RegisterRoutes(router.Group("/api/v1"), provider)
	return router
}

// corsOptions allows cookies and auth headers only for an explicit origin
// list. With a wildcard, rs/cors would echo back any origin.
func corsOptions(origins []string) cors.Options {
	wildcard := len(origins) == 0 || slices.Contains(origins, "*")
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !wildcard,
	}
}
