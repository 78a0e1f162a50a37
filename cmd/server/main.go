// @title Flyva Travel API
// @version 1.0
// @description Flight fare search, bookings, quotes and site content for the Flyva travel agency
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@flyva.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/flyva/travel-backend/docs"
	"github.com/flyva/travel-backend/internal/config"
	"github.com/flyva/travel-backend/internal/db"
	"github.com/flyva/travel-backend/internal/mail"
	"github.com/flyva/travel-backend/internal/ratelimit"
	"github.com/flyva/travel-backend/internal/server"
	"github.com/flyva/travel-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(db.Config{
		DatabaseURL:     cfg.DatabaseURL,
		PoolSize:        cfg.PoolSize,
		PoolRecycle:     cfg.PoolRecycle,
		PoolPrePing:     cfg.PoolPrePing,
		ConnectTimeout:  cfg.ConnectTimeout,
		ApplicationName: cfg.ApplicationName,
	})
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}

	files, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = ratelimit.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.DevMode

	srv, err := server.New(e, gormDB, cfg, server.Deps{
		Files:  files,
		Mailer: mail.New(cfg),
		Redis:  rdb,
	})
	if err != nil {
		log.Fatalf("server init: %v", err)
	}
	srv.StartMaintenance(ctx)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}
