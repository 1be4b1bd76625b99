package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-tracker/config"
	deliveryHttp "inventory-tracker/internal/delivery/http"
	"inventory-tracker/internal/delivery/http/handler"
	"inventory-tracker/internal/delivery/http/middleware"
	domainRepo "inventory-tracker/internal/domain/repository"
	"inventory-tracker/internal/infrastructure/cache"
	"inventory-tracker/internal/infrastructure/database"
	"inventory-tracker/internal/repository"
	"inventory-tracker/internal/usecase"
	"inventory-tracker/pkg/jwt"
	"inventory-tracker/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	MongoClient *mongo.Client
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
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

	ctx := context.Background()

	productRepo, err := app.openProductStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	sessionRepo, err := app.openSessionStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Server = initializeServer(cfg, app.Log, productRepo, sessionRepo)

	return app, nil
}

// setupLogger configures the standard logrus logger and returns it
func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return logrus.StandardLogger()
}

// openProductStore connects the configured product store
func (app *App) openProductStore(ctx context.Context) (domainRepo.ProductRepository, error) {
	cfg := app.Config

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if err := database.MigrateUp(cfg.DB); err != nil {
			return nil, err
		}
		db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsDevelopment())
		if err != nil {
			return nil, err
		}
		app.DB = db
		return repository.NewProductRepository(db), nil

	case config.StoreDriverMemory:
		app.Log.Warn("Using in-memory product store, data is lost on restart")
		return repository.NewMemoryProductRepository(), nil

	default:
		client, err := database.NewMongoClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		app.MongoClient = client

		collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		if err := database.EnsureProductIndexes(ctx, collection); err != nil {
			return nil, err
		}
		return repository.NewMongoProductRepository(collection), nil
	}
}

// openSessionStore connects the configured session store
func (app *App) openSessionStore(ctx context.Context) (domainRepo.SessionRepository, error) {
	if app.Config.Session.Driver == config.SessionDriverMemory {
		return repository.NewMemorySessionRepository(), nil
	}

	redisClient, err := cache.NewRedisClient(ctx, app.Config.Redis)
	if err != nil {
		return nil, err
	}
	app.RedisClient = redisClient
	return repository.NewSessionRepository(redisClient), nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	log *logrus.Logger,
	productRepo domainRepo.ProductRepository,
	sessionRepo domainRepo.SessionRepository,
) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize usecases
	productUsecase := usecase.NewProductUsecase(log, productRepo)
	authUsecase := usecase.NewAuthUsecase(log, cfg.Auth, sessionRepo, jwtService)

	// Initialize handlers
	productHandler := handler.NewProductHandler(productUsecase, customValidator)
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	healthHandler := handler.NewHealthHandler(log, productRepo, cfg.Store.Driver)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigin)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		productHandler,
		authHandler,
		healthHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
		cfg.Auth.ProtectAPI,
	)

	// Create server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.WithFields(logrus.Fields{
			"port":  app.Config.App.Port,
			"env":   app.Config.App.Env,
			"store": app.Config.Store.Driver,
		}).Info("Server starting")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (mongo, database, redis)
func (app *App) Close() {
	if app.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.MongoClient.Disconnect(ctx); err != nil {
			logrus.Warnf("Failed to disconnect MongoDB: %+v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
