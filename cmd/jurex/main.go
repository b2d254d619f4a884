package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jurex/internal/config"
	dbRedis "github.com/kailas-cloud/jurex/internal/db/redis"
	"github.com/kailas-cloud/jurex/internal/domain/corpus"
	logpkg "github.com/kailas-cloud/jurex/internal/logger"
	"github.com/kailas-cloud/jurex/internal/metrics"
	passagerepo "github.com/kailas-cloud/jurex/internal/repository/passage"
	statsrepo "github.com/kailas-cloud/jurex/internal/repository/stats"
	chiTransport "github.com/kailas-cloud/jurex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/jurex/internal/transport/openai"
	"github.com/kailas-cloud/jurex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/jurex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jurex/internal/usecase/ingest"
	planuc "github.com/kailas-cloud/jurex/internal/usecase/plan"
	retrieveuc "github.com/kailas-cloud/jurex/internal/usecase/retrieve"
	statsuc "github.com/kailas-cloud/jurex/internal/usecase/stats"
	"github.com/kailas-cloud/jurex/internal/version"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting jurex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create corpus store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Corpus store not ready", zap.Error(err))
	}
	logger.Info("Connected to corpus store")

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	requestTimeout := time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.EmbeddingModel,
		Dimensions:     cfg.LLM.EmbeddingDimensions,
		Provider:       cfg.LLM.Provider,
		MaxConcurrent:  cfg.LLM.MaxConcurrent,
		RequestTimeout: requestTimeout,
		Logger:         logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.ChatModel,
		Provider:       cfg.LLM.Provider,
		MaxRetries:     cfg.LLM.MaxRetries,
		BaseDelay:      time.Duration(cfg.LLM.RetryBaseDelayMs) * time.Millisecond,
		MaxConcurrent:  cfg.LLM.MaxConcurrent,
		RequestTimeout: requestTimeout,
		Logger:         logger,
	})
	logger.Info("LLM backend clients created",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		zap.Int("dimensions", cfg.LLM.EmbeddingDimensions),
	)

	// Repositories (domain-native, no adapters)
	passageRepo := passagerepo.New(store)
	statsStore := statsrepo.New(store)

	// Use case services
	statsSvc, err := statsuc.NewWithStore(ctx, statsStore)
	if err != nil {
		logger.Fatal("Failed to load usage counters", zap.Error(err))
	}

	planSvc := planuc.New(generator, cfg.Engine.MaxSubQueries)
	retrieveSvc := retrieveuc.New(
		passageRepo, embedder,
		cfg.Engine.TopK, cfg.Engine.MinScore,
		time.Duration(cfg.Engine.RetrievalTimeoutSec)*time.Second,
	)
	engineSvc := answer.New(
		planSvc,
		map[corpus.Corpus]answer.Retriever{
			corpus.LegalDocs: retrieveSvc,
			corpus.Cases:     retrieveSvc,
		},
		generator, statsSvc,
		cfg.Engine.PerCorpusCap, cfg.Engine.ContextBudgetChars,
	)
	ingestSvc := ingestuc.New(
		passageRepo, embedder, generator, statsSvc,
		cfg.LLM.EmbeddingDimensions, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap,
	)
	healthSvc := healthuc.New(store, generator)

	server := chiTransport.NewServer(
		engineSvc, ingestSvc, statsSvc, healthSvc, passageRepo,
		cfg.Ingest.MaxUploadBytes, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
