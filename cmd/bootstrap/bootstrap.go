package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"appointment-system/config"
	deliveryHttp "appointment-system/internal/delivery/http"
	"appointment-system/internal/delivery/http/handler"
	"appointment-system/internal/delivery/http/middleware"
	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/gateway"
	"appointment-system/internal/infrastructure/ai"
	"appointment-system/internal/infrastructure/cache"
	"appointment-system/internal/infrastructure/database"
	"appointment-system/internal/observability/metrics"
	"appointment-system/internal/repository"
	"appointment-system/internal/service"
	"appointment-system/internal/usecase"
	"appointment-system/pkg/jwt"
	"appointment-system/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger

	gemini      *ai.GeminiClient
	rateLimiter *middleware.RateLimiter
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, app.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, app.Log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg, db, redisClient, log := app.Config, app.DB, app.RedisClient, app.Log

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	conversationRepo := repository.NewConversationRepository(redisClient)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	doctorSequence := service.NewDoctorSequence(redisClient, doctorRepo, log)
	if err := doctorSequence.SyncOnStartup(context.Background(), db); err != nil {
		log.Warnf("Doctor code sequence not synced, codes will be floored lazily: %+v", err)
	}

	// Initialize AI clients
	llm, transcriber, err := app.initializeAI()
	if err != nil {
		return err
	}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, auditService, jwtService, redisClient)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, doctorSequence, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, auditService, appMetrics, cfg.App.Location())
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	classifier := usecase.NewIntentClassifier(llm, log, appMetrics, cfg.AI.Timeout)
	generalGenerator := usecase.NewGeneralResponseGenerator(llm, log, appMetrics, cfg.AI.Timeout)
	generators := usecase.NewGeneratorRegistry(generalGenerator, map[entity.Intent]usecase.ResponseGenerator{
		entity.IntentDoctorQuery: usecase.NewDoctorResponseGenerator(llm, doctorUsecase, log, appMetrics, cfg.AI.Timeout),
	})
	chatUsecase := usecase.NewChatUsecase(log, conversationRepo, classifier, generators, transcriber, appMetrics, cfg.AI.Timeout)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	chatHandler := handler.NewChatHandler(chatUsecase, cfg.AI.MaxAudioBytes)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		appointmentHandler,
		chatHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		app.rateLimiter,
		log,
		appMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		cfg.Auth.RequireAdmin,
	)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// initializeAI picks the primary completion provider and, when the other one
// has a key, wires it as fallback. Groq also serves transcription.
func (app *App) initializeAI() (gateway.LLMClient, gateway.Transcriber, error) {
	cfg := app.Config.AI

	var gemini, groq gateway.LLMClient
	var transcriber gateway.Transcriber

	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		app.gemini = client
		gemini = client
	}

	if cfg.GroqAPIKey != "" {
		client, err := ai.NewGroqClient(ai.GroqConfig{
			APIKey:             cfg.GroqAPIKey,
			BaseURL:            cfg.GroqBaseURL,
			Model:              cfg.GroqModel,
			TranscriptionModel: cfg.TranscriptionModel,
			Timeout:            cfg.Timeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create groq client: %w", err)
		}
		groq = client
		transcriber = client
	} else {
		app.Log.Warn("GROQ_API_KEY is not set, audio chat is disabled")
	}

	primary, fallback := gemini, groq
	if strings.EqualFold(cfg.Provider, "groq") {
		primary, fallback = groq, gemini
	}
	if primary == nil {
		primary, fallback = fallback, nil
	}
	if primary == nil {
		return nil, nil, errors.New("no AI provider configured: set GEMINI_API_KEY or GROQ_API_KEY")
	}

	app.Log.WithFields(logrus.Fields{
		"provider":     strings.ToLower(cfg.Provider),
		"has_fallback": fallback != nil,
	}).Info("AI clients initialized")

	return ai.NewFallbackClient(primary, fallback, app.Log), transcriber, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.rateLimiter != nil {
		app.rateLimiter.Close()
	}

	if app.gemini != nil {
		app.gemini.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
