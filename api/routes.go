package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backend/internal/auth"
	"backend/internal/infra"
	"backend/internal/metrics"
	middlewarepkg "backend/internal/middleware"
)

// RegisterRoutes mounts every route group on the engine.
func RegisterRoutes(router *gin.Engine, container *AppContainer, h *Handlers) {
	router.Use(
		middlewarepkg.RequestIDMiddleware(),
		metrics.PrometheusMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		if err := infra.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public.
	router.POST("/api/auth/login", h.Auth.Login)

	// Authenticated admin API. Scope resolution runs right after
	// authentication so every handler below sees a resolved request context.
	apiV1 := router.Group("/api/v1")
	apiV1.Use(
		auth.AuthMiddleware(container.JWTService),
		middlewarepkg.TenantScopeMiddleware(container.Resolver, container.Logger),
	)
	registerAPIRoutes(apiV1, h)
}

func registerAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	api.GET("/auth/me", h.Auth.Me)

	// Content types and view configurations.
	api.GET("/content-types", h.Configuration.Types)
	api.GET("/content-types/:type/configuration", h.Configuration.Configuration)

	// Documents.
	docs := api.Group("/content/:type")
	{
		docs.GET("", h.Documents.List)
		docs.POST("", h.Documents.Create)
		docs.GET("/relations/:field", h.Documents.RelationCandidates)
		docs.GET("/:id", h.Documents.Get)
		docs.PUT("/:id", h.Documents.Update)
		docs.DELETE("/:id", h.Documents.Delete)
		docs.POST("/:id/publish", h.Documents.Publish)
		docs.POST("/:id/unpublish", h.Documents.Unpublish)
	}

	// Operator surface.
	admin := api.Group("/admin")
	admin.Use(middlewarepkg.RequireSuperAdmin())
	{
		admin.POST("/tenants", h.Tenants.Create)
		admin.GET("/tenants", h.Tenants.List)
		admin.GET("/tenants/:id", h.Tenants.Get)
		admin.PUT("/tenants/:id", h.Tenants.Update)
		admin.POST("/tenants/:id/backfill", h.Tenants.Backfill)

		admin.GET("/assignments", h.Tenants.Assignments)
		admin.POST("/assignments", h.Tenants.Assign)
		admin.PUT("/assignments", h.Tenants.Reassign)
		admin.DELETE("/assignments/:email", h.Tenants.Unassign)

		admin.GET("/grants", h.Grants.List)
		admin.GET("/grant-conditions", h.Grants.Conditions)
	}
}
