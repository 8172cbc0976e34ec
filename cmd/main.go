package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"affiliate-tracking-service/internal/cache"
	"affiliate-tracking-service/internal/config"
	"affiliate-tracking-service/internal/controller"
	"affiliate-tracking-service/internal/db"
	httpserver "affiliate-tracking-service/internal/http"
	"affiliate-tracking-service/internal/repository"
	"affiliate-tracking-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	offerRepo := repository.NewOfferRepository(pool)
	clickRepo := repository.NewClickRepository(pool)
	conversionRepo := repository.NewConversionRepository(pool)

	var offers service.OfferSource = offerRepo
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("parse redis url: %v", err)
		}
		offers = cache.NewOfferCache(redis.NewClient(opts), offerRepo, cache.Config{
			FreshTTL: cfg.OfferCacheTTL,
			StaleTTL: cfg.OfferCacheStale,
		})
	}

	if cfg.PostbackSecret == "" {
		log.Println("POSTBACK_SECRET is not set; all postbacks will be rejected")
	}
	auth := service.NewPostbackAuthenticator(cfg.PostbackSecret)

	clickService := service.NewClickService(offers, clickRepo, service.NewClickIDMinter())
	postbackService := service.NewPostbackService(clickRepo, conversionRepo)

	clickController := controller.NewClickController(clickService)
	postbackController := controller.NewPostbackController(auth, postbackService)

	server := httpserver.NewServer(cfg, clickController, postbackController)

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting server on %s", cfg.HTTPPort)
	if err := server.Listen(cfg.HTTPPort); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
