package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/content"
	"backend/internal/tenant"
	"backend/internal/worker/handlers"
	"backend/internal/worker/tasks"
)

type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewServer(
	cfg config.RedisConfig,
	concurrency int,
	store *content.Store,
	resolver *tenant.Resolver,
	tenants *tenant.Service,
	users handlers.UserDirectory,
	logger *zap.Logger,
) *Server {
	if concurrency <= 0 {
		concurrency = 4
	}
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.Queue: 3,
				"default":   1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()

	backfillHandler := handlers.NewBackfillHandler(store, resolver, tenants, users, logger)
	mux.HandleFunc(tasks.TypeBackfillDocument, backfillHandler.HandleBackfillDocument)
	mux.HandleFunc(tasks.TypeBackfillSweep, backfillHandler.HandleBackfillSweep)

	return &Server{
		server: srv,
		mux:    mux,
		logger: logger,
	}
}

// Run starts the worker and blocks until shutdown.
func (s *Server) Run() error {
	s.logger.Info("worker server starting")
	return s.server.Run(s.mux)
}

// Start runs the worker in the background.
func (s *Server) Start() error {
	s.logger.Info("worker server starting in background")
	return s.server.Start(s.mux)
}

// Shutdown stops the worker gracefully.
func (s *Server) Shutdown() {
	s.logger.Info("worker server stopping")
	s.server.Shutdown()
}
