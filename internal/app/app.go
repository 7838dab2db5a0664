package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-commerce-api/internal/config"
	"go-commerce-api/internal/database"
	"go-commerce-api/internal/handler"
	"go-commerce-api/internal/middleware"
	"go-commerce-api/internal/repository"
	"go-commerce-api/internal/router"
	"go-commerce-api/internal/security"
	"go-commerce-api/internal/service"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to MongoDB")
	db, err := database.New(context.Background(), cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureIndexes(context.Background()); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure database indexes: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	slog.Info("database ready")

	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	lockout := security.NewLockoutPolicy(cfg.LockoutThreshold, cfg.LockoutDuration)

	authService := service.NewAuthService(userRepo, tokenService, hasher, lockout)
	productService := service.NewProductService(productRepo)
	userService := service.NewUserService(userRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler()

	appRouter := router.New(cfg, authMiddleware, authHandler, productHandler, userHandler, orderHandler, db.Health)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := a.db.Close(ctx); err != nil {
		slog.Warn("closing database connection", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
