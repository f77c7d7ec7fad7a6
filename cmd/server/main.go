package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/config"
	"github.com/tuanng17/coinfolio/internal/handlers"
	"github.com/tuanng17/coinfolio/internal/logger"
	"github.com/tuanng17/coinfolio/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The cache is best-effort: an unreachable Redis degrades to a cache
	// miss on every load, it never blocks startup.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, snapshot cache disabled", zap.Error(err))
	}
	cancel()

	// Services
	upstream := services.NewUpstreamClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log)
	aggregator := services.NewAggregatorService(cfg.Sectors, log)
	cache := services.NewSnapshotCache(redisClient, cfg.Refresh.CacheTTL, log)
	refresh := services.NewRefreshService(upstream, aggregator, cache, cfg.Refresh.Interval, log)
	query := services.NewQueryService(upstream, cfg.Query.RatePerMinute, cfg.Query.Burst, log)

	refresh.Start(ctx)
	defer refresh.Stop()

	// Handlers
	portfolioHandler := handlers.NewPortfolioHandler(refresh)
	queryHandler := handlers.NewQueryHandler(query)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "coinfolio",
		})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/portfolio", portfolioHandler.HandlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/holdings", portfolioHandler.HandleHoldings).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/holdings/table", portfolioHandler.HandleHoldingsTable).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/refresh", portfolioHandler.HandleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/portfolio/query", queryHandler.HandleQuery).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      corsMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
