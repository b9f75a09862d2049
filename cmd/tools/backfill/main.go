package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/content"
	"backend/internal/infra"
	"backend/internal/logger"
	"backend/internal/tenant"
	"backend/internal/worker/tasks"
)

// backfill connects tenant-less records to a tenant. By default it enqueues
// the sweep for the worker; --inline runs it directly against the database,
// for one-off migrations where no worker is running.
func main() {
	var (
		externalID = flag.String("tenant", "", "external id of the target tenant (required)")
		typesArg   = flag.String("types", "", "comma-separated content types, empty for all scoped types")
		inline     = flag.Bool("inline", false, "run the sweep directly instead of enqueueing it")
	)
	flag.Parse()

	if *externalID == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -tenant <external-id> [-types a,b,c] [-inline]")
		os.Exit(2)
	}

	_ = godotenv.Load()

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

	var contentTypes []string
	if *typesArg != "" {
		for _, t := range strings.Split(*typesArg, ",") {
			if t = strings.TrimSpace(t); t != "" {
				contentTypes = append(contentTypes, t)
			}
		}
	}

	if *inline {
		runInline(cfg, *externalID, contentTypes)
		return
	}

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     infra.RedisAddr(&cfg.Redis),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	task, err := tasks.NewBackfillSweepTask(*externalID, contentTypes)
	if err != nil {
		logger.Fatal("build sweep task", zap.Error(err))
	}
	info, err := client.EnqueueContext(context.Background(), task)
	if err != nil {
		logger.Fatal("enqueue sweep task", zap.Error(err))
	}
	logger.Info("sweep enqueued",
		zap.String("task_id", info.ID),
		zap.String("tenant_external_id", *externalID),
	)
}

func runInline(cfg *config.Config, externalID string, contentTypes []string) {
	db, err := infra.InitDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer infra.CloseDatabase()

	ctx := context.Background()

	service := tenant.NewService(db, nil, logger.Get())
	target, err := service.GetTenantByExternalID(ctx, externalID)
	if err != nil {
		logger.Fatal("resolve tenant", zap.String("external_id", externalID), zap.Error(err))
	}

	registry := content.DefaultRegistry()
	store := content.NewStore(db, registry)
	if len(contentTypes) == 0 {
		contentTypes = registry.TenantScopedUIDs()
	}

	updated, err := store.SweepTenantless(ctx, contentTypes, target.ID, target.ExternalID)
	if err != nil {
		logger.Fatal("sweep", zap.Error(err))
	}
	logger.Info("sweep completed",
		zap.String("tenant_external_id", externalID),
		zap.Int64("documents_updated", updated),
	)
}
