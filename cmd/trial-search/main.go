// Command trial-search serves the clinical trial search front-end.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/clinsight/trial-search/internal/web"
	"github.com/clinsight/trial-search/pkg/client"
	"github.com/clinsight/trial-search/pkg/logging"
	"github.com/clinsight/trial-search/pkg/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "trial-search/0.1.0 (ops@clinsight.example)")

	clientCfg := client.DefaultConfig(userAgent)
	if baseURL := os.Getenv("CTGOV_BASE_URL"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	// Redis is optional: without it the client runs uncached and unthrottled.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			log.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		cancel()

		clientCfg.Redis = redisClient
		defer redisClient.Close()
		log.Info().Str("addr", redisURL).Msg("Connected to Redis")
	}

	if rate := os.Getenv("CTGOV_RATE_PER_MINUTE"); rate != "" {
		n, err := strconv.Atoi(rate)
		if err != nil {
			log.Fatal().Str("value", rate).Msg("CTGOV_RATE_PER_MINUTE must be an integer")
		}
		clientCfg.RatePerMinute = n
	}

	ctgovClient, err := client.New(clientCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ClinicalTrials.gov client")
	}

	searchService := search.NewService(ctgovClient, search.DefaultConfig())
	handler := web.NewHandler(searchService)

	container := restful.NewContainer()
	web.RegisterRoutes(container, handler)
	container.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: corsHandler.Handler(container),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("user_agent", userAgent).Msg("Starting trial search server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
