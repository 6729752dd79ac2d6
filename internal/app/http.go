package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/blueDog-Consulting/gh-issues-view/internal/api"
	authhandler "github.com/blueDog-Consulting/gh-issues-view/internal/auth/handler"
	"github.com/blueDog-Consulting/gh-issues-view/internal/config"
	"github.com/blueDog-Consulting/gh-issues-view/internal/github"
	"github.com/blueDog-Consulting/gh-issues-view/internal/middleware"
	"github.com/blueDog-Consulting/gh-issues-view/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	githubClient := github.NewClient()

	authHandler := authhandler.NewHandler(
		cfg.GithubClientID,
		cfg.GithubClientSecret,
		cfg.SessionSecret,
		sessionStore,
		githubClient,
	)

	apiHandler := api.NewHandler(githubClient)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore, cfg.SessionSecret)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.Static("/assets", "./web/assets")

	router.GET("/", func(c *gin.Context) {
		c.File("./web/index.html")
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.GinRequireAuth(authMiddleware))

	apiHandler.RegisterRoutes(apiGroup)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
