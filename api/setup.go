package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authHandlers "backend/api/handlers/auth"
	contentHandlers "backend/api/handlers/content"
	tenantHandlers "backend/api/handlers/tenants"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/content"
	"backend/internal/infra"
	"backend/internal/permission"
	"backend/internal/scope"
	"backend/internal/tenant"
	"backend/internal/worker"
)

// AppContainer wires every service the HTTP layer and the worker share.
type AppContainer struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  redis.UniversalClient
	Logger *zap.Logger

	JWTService    *auth.JWTService
	AuthStore     *auth.Store
	Registry      *content.Registry
	Store         *content.Store
	Resolver      *tenant.Resolver
	TenantService *tenant.Service
	Grants        *permission.Service

	QueueClient *asynq.Client
	Assigner    *scope.AutoAssigner
	Interceptor *scope.Interceptor
	Rewriter    *scope.Rewriter
	Scrubber    *scope.Scrubber

	Worker *worker.Server
}

// Handlers aggregates the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth          *authHandlers.AuthHandler
	Documents     *contentHandlers.DocumentsHandler
	Configuration *contentHandlers.ConfigurationHandler
	Tenants       *tenantHandlers.TenantsHandler
	Grants        *tenantHandlers.GrantsHandler
}

// BuildContainer constructs the full service graph from the shared
// infrastructure handles.
func BuildContainer(db *gorm.DB, rdb redis.UniversalClient, cfg *config.Config, logger *zap.Logger) *AppContainer {
	jwtService := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		time.Duration(cfg.Auth.AccessExpiryMinutes)*time.Minute,
	)
	authStore := auth.NewStore(db)

	registry := content.DefaultRegistry()
	store := content.NewStore(db, registry)

	resolver := tenant.NewResolver(
		db,
		rdb,
		authStore,
		time.Duration(cfg.Backfill.ScopeCacheTTLSeconds)*time.Second,
		logger,
	)
	tenantService := tenant.NewService(db, resolver, logger)

	grants := permission.NewService(db, registry, permission.DefaultConditions(), logger)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     infra.RedisAddr(&cfg.Redis),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	assigner := scope.NewAutoAssigner(queueClient, logger)
	interceptor := scope.NewInterceptor(store, assigner, logger)
	rewriter := scope.NewRewriter(
		resolver,
		jwtService,
		registry,
		cfg.Admin.DefaultPageSize,
		cfg.Admin.MinPageSize,
		cfg.Admin.MaxPageSize,
		logger,
	)
	scrubber := scope.NewScrubber(registry, logger)

	workerServer := worker.NewServer(
		cfg.Redis,
		cfg.Backfill.Concurrency,
		store,
		resolver,
		tenantService,
		authStore,
		logger,
	)

	return &AppContainer{
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		Logger:        logger,
		JWTService:    jwtService,
		AuthStore:     authStore,
		Registry:      registry,
		Store:         store,
		Resolver:      resolver,
		TenantService: tenantService,
		Grants:        grants,
		QueueClient:   queueClient,
		Assigner:      assigner,
		Interceptor:   interceptor,
		Rewriter:      rewriter,
		Scrubber:      scrubber,
		Worker:        workerServer,
	}
}

// BuildHandlers constructs the HTTP handlers from the container.
func BuildHandlers(c *AppContainer) *Handlers {
	return &Handlers{
		Auth:          authHandlers.NewAuthHandler(c.JWTService, c.AuthStore, c.Logger),
		Documents:     contentHandlers.NewDocumentsHandler(c.Interceptor, c.Rewriter, c.Grants, c.Logger),
		Configuration: contentHandlers.NewConfigurationHandler(c.Registry, c.Scrubber),
		Tenants:       tenantHandlers.NewTenantsHandler(c.TenantService, c.Assigner, c.Logger),
		Grants:        tenantHandlers.NewGrantsHandler(c.Grants, c.Logger),
	}
}

// SetupRouter builds the Gin engine with the shared middleware chain and all
// routes mounted.
func SetupRouter(container *AppContainer) *gin.Engine {
	gin.SetMode(container.Config.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())

	RegisterRoutes(router, container, BuildHandlers(container))
	return router
}
