package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/api"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/content"
	"backend/internal/infra"
	"backend/internal/logger"
	"backend/internal/permission"
	"backend/internal/tenant"
	"backend/internal/worker"
)

func main() {
	// .env keeps the APP_* variables in one place during development; a
	// missing file is fine.
	if err := godotenv.Load(); err == nil {
		fmt.Println("loaded .env")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(env, "")
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
	)

	db, err := infra.InitDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer infra.CloseDatabase()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	} else {
		logger.Info("auto migration disabled")
	}

	rdb, err := infra.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	defer infra.CloseRedis()

	container := api.BuildContainer(db, rdb, cfg, logger.Get())

	// Seed the editor grants on every boot; the seeder is idempotent.
	if err := container.Grants.EnsureEditorGrants(context.Background()); err != nil {
		logger.Fatal("ensure editor grants", zap.Error(err))
	}

	router := api.SetupRouter(container)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	go func() {
		if err := container.Worker.Run(); err != nil {
			logger.Fatal("worker server", zap.Error(err))
		}
	}()

	gracefulShutdown(server, container.Worker)
}

func runMigrations(db *gorm.DB) error {
	return infra.AutoMigrate(db,
		&tenant.Tenant{},
		&tenant.EditorAssignment{},
		&auth.AdminUser{},
		&content.Document{},
		&permission.Grant{},
	)
}

func gracefulShutdown(server *http.Server, workerServer *worker.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	workerServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
