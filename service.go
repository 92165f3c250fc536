package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"ewintr.nl/ytsum/auth"
	"ewintr.nl/ytsum/cache"
	"ewintr.nl/ytsum/handler"
	"ewintr.nl/ytsum/jobs"
	"ewintr.nl/ytsum/storage"
	"ewintr.nl/ytsum/summarize"
	"ewintr.nl/ytsum/youtube"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "ytsum"),
		Password: getParam("POSTGRES_PASSWORD", "ytsum"),
		Database: getParam("POSTGRES_DB", "ytsum"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", slog.Any("error", err))
		os.Exit(1)
	}
	jobRepo := storage.NewPostgresJobRepository(postgres)

	cacheTTL, err := time.ParseDuration(getParam("TRANSCRIPT_CACHE_TTL", "1h"))
	if err != nil {
		logger.Error("unable to parse cache ttl", slog.Any("error", err))
		os.Exit(1)
	}
	transcripts := cache.NewTranscripts(getParam("REDIS_URL", ""), cacheTTL, logger)

	ytClient := youtube.NewClient(&http.Client{Timeout: 15 * time.Second}, transcripts, logger)

	var meta jobs.MetadataFetcher
	if apiKey := getParam("YOUTUBE_API_KEY", ""); apiKey != "" {
		ytService, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			logger.Error("unable to create youtube data service", slog.Any("error", err))
			os.Exit(1)
		}
		meta = youtube.NewDataAPI(ytService)
	}

	summarizer := summarize.NewOpenAI(getParam("OPENAI_API_KEY", ""))

	workers, err := strconv.Atoi(getParam("JOB_WORKERS", "2"))
	if err != nil {
		logger.Error("invalid worker count", slog.Any("error", err))
		os.Exit(1)
	}
	pool := jobs.NewPool(workers, 32, logger)
	pool.Start()

	manager := jobs.NewManager(jobRepo, ytClient, summarizer, meta, pool, logger)
	tokens := auth.NewStaticTokens(getParam("API_TOKENS", ""))

	server := handler.NewServer(
		handler.NewTranscriptAPI(ytClient, summarizer, logger),
		handler.NewSummariesAPI(manager, tokens, logger),
		logger,
	)

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", slog.Any("error", err))
		os.Exit(1)
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: server}
	go srv.ListenAndServe()
	logger.Info("http server started", slog.Int("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	// stop accepting requests before draining the pool
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.Any("error", err))
	}
	pool.Stop()
	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
