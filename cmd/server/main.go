package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/task_manager/internal/config"
	"github.com/Skotchmaster/task_manager/internal/db"
	"github.com/Skotchmaster/task_manager/internal/events"
	"github.com/Skotchmaster/task_manager/internal/handlers"
	"github.com/Skotchmaster/task_manager/internal/httpx"
	"github.com/Skotchmaster/task_manager/internal/logging"
	mw "github.com/Skotchmaster/task_manager/internal/middleware"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/search"
	"github.com/Skotchmaster/task_manager/internal/service"
	"github.com/Skotchmaster/task_manager/internal/tokens"
	httpserver "github.com/Skotchmaster/task_manager/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmptyBytes(cfg.AccessSecret, "JWT_ACCESS_SECRET")
	config.MustNonEmptyBytes(cfg.RefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("database migrate error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaAddress)

	var taskIndex *search.Index
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(search.ClientConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			taskIndex = search.NewIndex(esClient, "tasks")
		}
	}

	tokenManager := &tokens.Manager{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	repository := repo.New(gormDB)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpx.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(
		echomw.Recover(),
		echomw.RequestID(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowCredentials: true,
		}),
		echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
			Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Every(9 * time.Second), // ~100 requests per 15 minutes
				Burst:     100,
				ExpiresIn: 15 * time.Minute,
			}),
		}),
		mw.RequestLogger(logger),
	)

	deps := httpserver.Deps{
		DB:          gormDB,
		AuthHandler: &handlers.AuthHandler{Svc: &service.AuthService{Repo: repository, Tokens: tokenManager, Producer: producer}},
		TaskHandler: &handlers.TaskHandler{Svc: &service.TaskService{Repo: repository, Search: taskIndex, Producer: producer}},
		UserHandler: &handlers.UserHandler{Svc: &service.UserService{Repo: repository}},
		Auth:        mw.NewAuth(tokenManager),
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
