package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-service/config"
	"shop-service/internal/cache"
	"shop-service/internal/consumer"
	"shop-service/internal/database"
	"shop-service/internal/logger"
	"shop-service/internal/migrate"
	"shop-service/internal/repository"
	"shop-service/internal/router"
	"shop-service/internal/scheduler"
	"shop-service/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrate.MigrateShopDB(ctx, db, log, migrate.DefaultMigrateOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// Кэш — чистая оптимизация: без Redis едем на noop-сторе
	var store cache.Store = cache.NewNoopStore()
	if cfg.Redis.Enabled {
		rs, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warn("redis unavailable, cache disabled", zap.Error(err))
		} else {
			store = rs
			defer rs.Close()
		}
	}

	repos := repository.New(db, store, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

	userSvc := service.NewUserService(repos)
	productSvc := service.NewProductService(repos)
	orderSvc := service.NewOrderService(repos, log)
	reportSvc := service.NewReportService(repos, log)

	if len(cfg.Kafka.Brokers) > 0 {
		cons := consumer.NewStockConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ProductTopic, cfg.Kafka.OrderTopic, repos, log)
		defer cons.Close()
		go func() {
			if err := cons.Run(ctx); err != nil {
				log.Error("consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Warn("no kafka brokers configured (KAFKA_BROKERS), stock consumer disabled")
	}

	sched := scheduler.NewScheduler(reportSvc, cfg.ReportInterval, log)
	sched.Start(ctx)
	defer sched.Stop()

	r := router.Router(userSvc, productSvc, orderSvc, reportSvc, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
