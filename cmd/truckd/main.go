package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nilp12200/truckproject/internal/config"
	"github.com/nilp12200/truckproject/internal/middleware"
	"github.com/nilp12200/truckproject/internal/trucking/entity"
	"github.com/nilp12200/truckproject/internal/trucking/handler"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"github.com/nilp12200/truckproject/internal/trucking/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting truckd",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate tables", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, zapLogger, cfg.JWT.Secret)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
	}
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	api := r.Group("/api")

	api.POST("/login", h.Auth.Login)

	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// plant directory
		authorized.GET("/plants", h.Plant.ListActive)
		authorized.GET("/plant-master", h.Plant.ListAll)
		authorized.GET("/plant-master/:id", h.Plant.Get)
		authorized.POST("/plant-master", h.Plant.Create)
		authorized.PUT("/plant-master/:id", h.Plant.Update)
		authorized.DELETE("/plant-master/:id", h.Plant.Delete)

		// operator accounts
		users := authorized.Group("/users", middleware.RequireRole("admin"))
		{
			users.GET("", h.User.List)
			users.POST("", h.User.Create)
			users.PUT("/:username", h.User.Update)
			users.DELETE("/:username", h.User.Delete)
		}

		// itineraries
		authorized.POST("/truck-transaction", h.Transaction.Submit)
		authorized.GET("/truck-transaction/:truckNo", h.Transaction.Open)
		authorized.DELETE("/truck-transaction/detail/:detailId", h.Transaction.DeleteDetail)

		// check-in/check-out
		authorized.POST("/update-truck-status", h.Status.Advance)
		authorized.GET("/check-priority-status", h.Status.PriorityStatus)
		authorized.GET("/finished-plant", h.Status.FinishedPlant)

		// queries and reports
		authorized.GET("/trucks", h.Report.TrucksAwaitingCheckIn)
		authorized.GET("/checked-in-trucks", h.Report.CheckedInTrucks)
		authorized.GET("/truck-plant-quantities", h.Report.PlantQuantities)
		authorized.GET("/truck-find", h.Report.ActiveTrucks)
		authorized.GET("/fetch-remarks", h.Report.Remarks)
		authorized.GET("/truck-report", h.Report.Report)
		authorized.GET("/truck-report/export", h.Report.ExportReport)
		authorized.GET("/truck-schedule", h.Report.Schedule)

		// live status stream for gate and dashboard screens
		authorized.GET("/truck-status-stream", h.SSE.Stream)
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}
