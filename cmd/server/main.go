package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user_manager/internal/config"
	"user_manager/internal/handler"
	"user_manager/internal/logger"
	"user_manager/internal/metrics"
	"user_manager/internal/middleware"
	"user_manager/internal/queue"
	"user_manager/internal/repository"
	"user_manager/internal/service"
	"user_manager/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	cfg := config.Load()

	zl, err := logger.Init(cfg.IsLocal())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.JWTSecret == "" {
		zl.Fatal("JWT_SECRET not set in environment")
	}
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Database Connection ---
	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.AutoMigrate(db); err != nil {
		zl.Fatal("Failed to auto-migrate database", zap.Error(err))
	}

	// --- Token Denylist ---
	denylist, err := repository.NewRedisDenylist(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		if !cfg.IsLocal() {
			zl.Fatal("Failed to connect to redis", zap.Error(err))
		}
		zl.Warn("Redis unavailable, falling back to in-memory denylist", zap.Error(err))
		denylist = repository.NewMemoryDenylist()
	}
	defer denylist.Close()

	// --- Event Publisher ---
	var events queue.Publisher
	if cfg.AMQPURL != "" {
		events, err = queue.NewRabbit(cfg.AMQPURL)
		if err != nil {
			zl.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
	} else {
		zl.Warn("AMQP_URL not set, lifecycle events disabled")
		events = queue.NewNoop()
	}
	defer events.Close()

	metrics.MustRegister()
	handler.RegisterValidators()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTAudience, cfg.JWTIssuer)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(db)

	// --- Initialize Services ---
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userService, jwtUtil, denylist, events)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, events)

	// --- Setup Gin Router ---
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORS())

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil, denylist)
	adminRoleMW := middleware.AdminMiddleware(userService)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.ClientIDMiddleware(cfg.ClientID, cfg.IsLocal()))
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	userHandler.RegisterUserRoutes(apiGroup, jwtAuthMW, adminRoleMW)
	handler.NewOpsHandler(db).RegisterOpsRoutes(apiGroup)

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zl.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zl.Info("Server exiting")
}
