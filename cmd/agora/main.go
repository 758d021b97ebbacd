package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nostrmarket/agora/adapters/events"
	"github.com/nostrmarket/agora/adapters/market"
	"github.com/nostrmarket/agora/adapters/store"
	"github.com/nostrmarket/agora/config"
	"github.com/nostrmarket/agora/metrics"
	"github.com/nostrmarket/agora/pow"
	"github.com/nostrmarket/agora/service"
	transport "github.com/nostrmarket/agora/transport/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to parse redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewSlogLogger(slog.Default()),
	)
	if err != nil {
		slog.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	marketClient := market.NewClient(cfg.MarketBaseURL, cfg.RequestTimeout, cfg.RequestRate)
	sessionStore := store.NewRedisStore(redisClient)
	eventPub := events.NewWatermillPublisher(publisher)
	solver := pow.Solver{
		Difficulty: cfg.PowDifficulty,
		MaxNonce:   cfg.PowMaxNonce,
		Workers:    cfg.PowWorkers,
	}

	authService := service.NewAuthService(marketClient, sessionStore, eventPub, collector, cfg.RequireProfile)
	listingService := service.NewListingService(marketClient, sessionStore, solver, collector)
	paymentService := service.NewPaymentService(marketClient, sessionStore, eventPub, collector)

	// Revalidate any session that survived a restart; a rejected token is
	// cleared before the first request arrives.
	if _, err := authService.Validate(ctx); err != nil {
		slog.Info("no valid session at startup", "reason", err)
	}

	router := transport.SetupRouter(authService, listingService, paymentService, sessionStore, metrics.Handler(registry))

	slog.Info("starting facade", "addr", cfg.ListenAddr, "market", cfg.MarketBaseURL)
	if err := router.Run(cfg.ListenAddr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
