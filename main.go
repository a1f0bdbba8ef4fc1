package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/config"
	"github.com/backsoul/quizquest/pkg/gemini"
	"github.com/backsoul/quizquest/pkg/handlers"
	"github.com/backsoul/quizquest/pkg/logger"
	"github.com/backsoul/quizquest/pkg/pdf"
	"github.com/backsoul/quizquest/pkg/redis"
	"github.com/backsoul/quizquest/pkg/services"
	"github.com/backsoul/quizquest/pkg/websocket"
)

// maxUploadSize bounds the PDF uploads accepted by the server
const maxUploadSize = 64 << 20

func main() {
	addr := pflag.StringP("addr", "a", "", "listen address (overrides SERVER_ADDR)")
	envFile := pflag.StringP("env-file", "e", ".env", "dotenv file to load")
	logLevel := pflag.StringP("log-level", "l", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("❌ invalid configuration", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("🚀 starting quiz server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("❌ server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("🔌 connecting to redis", "addr", cfg.RedisAddr)
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	redisClient, err := redis.NewRedisClient(connectCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	cancel()
	if err != nil {
		return err
	}
	defer redisClient.Close()

	generator, closeGenerator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGenerator()

	log.Info("⚙️  initializing services")
	quizService := services.NewQuizService(redisClient, log)
	scoreService := services.NewScoreService(redisClient, redisClient, log)
	authService := services.NewAuthService(redisClient, cfg.JWTSecret, cfg.TokenTTL, log)
	sessionService := services.NewSessionService(redisClient, quizService, scoreService, log)
	rankingService := services.NewRankingService(redisClient, log)
	extractor := services.NewExtractor(generator, log)

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	openPDF := func(data []byte) (handlers.ClosableDocument, error) {
		return pdf.Open(data, log)
	}

	router := handlers.NewRouter(authService, quizService, redisClient, log)
	router.Auth = handlers.NewAuthHandler(authService)
	router.Quizzes = handlers.NewQuizHandler(quizService, scoreService, authService, extractor, openPDF, hub, log)
	router.Sessions = handlers.NewSessionHandler(sessionService)
	router.Rankings = handlers.NewRankingHandler(rankingService)
	router.WS = handlers.NewWSHandler(hub, log)

	if count, err := quizService.QuizCount(ctx); err == nil {
		log.Info("📚 quizzes in store", "count", count)
	}

	server := &fasthttp.Server{
		Handler:            router.Handle,
		Name:               "Quiz Server",
		MaxRequestBodySize: maxUploadSize,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🎮 quiz server listening", "addr", cfg.ServerAddr, "generator", cfg.GeminiBackend, "model", cfg.GeminiModel)
		log.Info("🔧 API health: /api/health")
		errCh <- server.ListenAndServe(cfg.ServerAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("🛑 shutting down")
		return server.Shutdown()
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (services.Generator, func(), error) {
	if cfg.GeminiAPIKey == "" {
		slog.Warn("⚠️ GEMINI_API_KEY is empty, extraction requests will fail")
	}

	if cfg.GeminiBackend == "sdk" {
		client, err := gemini.NewSDKClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	}
	return gemini.NewClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey), func() {}, nil
}
