package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tinylink/internal/config"
	"tinylink/internal/handler"
	"tinylink/internal/middleware"
	"tinylink/internal/service"
	"tinylink/internal/shortcode"
	"tinylink/pkg/database"
	"tinylink/pkg/logger"
	redisPkg "tinylink/pkg/redis"

	_ "tinylink/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title TinyLink API
// @version 1.0
// @description Minimal URL shortener: short codes, redirects, click counts.
// @BasePath /

func main() {
	logger.InitLogger()
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("log sync failed:", err)
		}
	}()
	log := zap.S()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.InitPostgres(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Name, cfg.Database.SSLMode,
	)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Info("database ready")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redisPkg.NewClient(&redisPkg.Config{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			log.Warnf("redis unavailable, rate limiting falls back to in-memory: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Errorf("close redis: %v", err)
				}
			}()
			log.Info("redis ready")
		}
	}

	codeGenerator := shortcode.NewGenerator(db, log)
	linkService := service.NewLinkService(db, codeGenerator, log)
	linkHandler := handler.NewLinkHandler(linkService, cfg.App.Version)

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.RateLimit(rdb, &cfg.RateLimit))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(router, linkHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	log.Infof("%s listening on :%d", cfg.App.Name, cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func registerRoutes(router *gin.Engine, links *handler.LinkHandler) {
	router.GET("/healthz", links.Healthz)
	router.GET("/:code", links.Redirect)

	api := router.Group("/api")
	{
		api.POST("/links", links.CreateLink)
		api.GET("/links", links.ListLinks)
		api.GET("/links/:code", links.GetLink)
		api.DELETE("/links/:code", links.DeleteLink)
		api.GET("/stats", links.GetStats)
	}
}
