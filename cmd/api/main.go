package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tradebook/config"
	"tradebook/internal/handler"
	"tradebook/internal/repository"
	"tradebook/internal/router"
	"tradebook/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if cfg.DebugMode != "True" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := connectDB(cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Fatalf("Goose: failed to set dialect: %v", err)
		}
		logger.Info("Running database migrations...")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			logger.Fatalf("Goose migration failed: %v", err)
		}
	}

	tradeRepo := repository.NewGormTradeRepository(db)
	tradeService := service.NewTradesService(tradeRepo, logger)
	tradeHandler := handler.NewTradeHandler(tradeService, logger)

	routerConfig := &router.Config{
		TradeHandler:   tradeHandler,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}

	r := router.NewRouter(routerConfig)

	if err := r.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

// connectDB opens the gorm connection and verifies it with a ping,
// retrying with fibonacci backoff while the database comes up.
func connectDB(dsn string) (*gorm.DB, error) {
	var db *gorm.DB

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return retry.RetryableError(err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
