package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nursehub/nursing-assistant/internal/config"
	"github.com/nursehub/nursing-assistant/internal/domain/chat"
	"github.com/nursehub/nursing-assistant/internal/domain/clinical"
	"github.com/nursehub/nursing-assistant/internal/domain/handoff"
	"github.com/nursehub/nursing-assistant/internal/platform/auth"
	"github.com/nursehub/nursing-assistant/internal/platform/db"
	"github.com/nursehub/nursing-assistant/internal/platform/llm"
	"github.com/nursehub/nursing-assistant/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nurse-server",
		Short: "Nursing assistant API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s\n", "VERSION", "NAME", "STATUS")
			for _, s := range statuses {
				status := "pending"
				if s.Applied {
					status = "applied"
				}
				fmt.Printf("%-10d %-40s %-10s\n", s.Version, s.Name, status)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// API group with per-client rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Provider gateway. Only providers with configured keys are registered.
	gateway := llm.NewGateway(cfg.LLMRateWindow, cfg.LLMTimeout, logger)
	if cfg.OpenAIKey != "" {
		chatgpt := llm.NewChatGPT(cfg.OpenAIKey, cfg.OpenAIModel)
		gateway.Register(chatgpt, cfg.PriceChatGPT)
		gateway.SetChatCompleter(chatgpt)
	}
	if cfg.GeminiKey != "" {
		gateway.Register(llm.NewGemini(cfg.GeminiKey, cfg.GeminiModel), cfg.PriceGemini)
	}
	if cfg.GroqKey != "" {
		gateway.Register(llm.NewGroq(cfg.GroqKey, cfg.GroqModel), cfg.PriceGroq)
	}
	if cfg.XAIKey != "" {
		gateway.Register(llm.NewXAI(cfg.XAIKey, cfg.XAIModel), cfg.PriceXAI)
	}

	// Clinical data access
	clinicalRepo := clinical.NewRepoPG(pool)
	aggregator := clinical.NewAggregator(clinicalRepo, cfg.VitalsLookback)

	// Handoff report generation
	handoffRepo := handoff.NewRepoPG(pool)
	handoffSvc := handoff.NewService(aggregator, gateway, handoffRepo, cfg.LLMMaxRetries, logger)
	handoffHandler := handoff.NewHandler(handoffSvc)
	handoffHandler.RegisterRoutes(apiV1)

	// Conversational assistant
	if cfg.RetrievalURL != "" {
		retriever := chat.NewHTTPRetriever(cfg.RetrievalURL, cfg.RetrievalTopK)
		checkpoints := chat.NewCheckpointPG(pool)
		chatMgr := chat.NewManager(gateway, retriever, checkpoints, cfg.ChatHistoryLimit, cfg.ChatMaxToolRounds, logger)
		chatHandler := chat.NewHandler(chatMgr)
		chatHandler.RegisterRoutes(apiV1)
	} else {
		logger.Warn().Msg("RETRIEVAL_URL not set; chat endpoint is disabled")
	}

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	return e.Start(":" + cfg.Port)
}
