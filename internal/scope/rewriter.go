package scope

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/auth"
	"backend/internal/content"
	"backend/internal/tenant"
)

// ErrUnknownRelation is returned when a relation picker names a field that is
// not a relation of the source type.
var ErrUnknownRelation = errors.New("scope: unknown relation field")

// Rewriter shapes incoming admin list and relation queries before they reach
// the document layer: it clamps pagination and injects the caller's tenant
// filter. The filter injection overlaps with the interceptor on purpose; the
// two layers fail independently.
type Rewriter struct {
	resolver *tenant.Resolver
	jwt      *auth.JWTService
	registry *content.Registry

	defaultPageSize int
	minPageSize     int
	maxPageSize     int

	logger *zap.Logger
}

func NewRewriter(resolver *tenant.Resolver, jwt *auth.JWTService, registry *content.Registry, defaultPageSize, minPageSize, maxPageSize int, logger *zap.Logger) *Rewriter {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if minPageSize <= 0 {
		minPageSize = 1
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{
		resolver:        resolver,
		jwt:             jwt,
		registry:        registry,
		defaultPageSize: defaultPageSize,
		minPageSize:     minPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
	}
}

// CallerScope returns the caller's tenant scope. The request context is
// consulted first; when the scope middleware has not run yet, the bearer
// token is decoded directly so the rewriter never depends on middleware
// ordering.
func (r *Rewriter) CallerScope(c *gin.Context) *tenant.Scope {
	if s, ok := tenant.ScopeFromContext(c.Request.Context()); ok {
		return s
	}

	id, ok := auth.GetIdentity(c)
	if !ok {
		token := auth.ExtractTokenFromBearer(c.GetHeader("Authorization"))
		if token == "" {
			return nil
		}
		claims, err := r.jwt.ValidateToken(token)
		if err != nil {
			return nil
		}
		id = tenant.Identity{UserID: claims.UserID, Email: claims.Email, Roles: claims.Roles}
	}
	return ScopeForIdentity(c.Request.Context(), r.resolver, id, r.logger)
}

// ListQuery builds a document list query from the request: pagination clamped
// to the configured bounds, optional status filter, and the caller's tenant
// filter conjoined in.
func (r *Rewriter) ListQuery(c *gin.Context) content.ListQuery {
	q := content.ListQuery{
		Search:   c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "pageSize", r.defaultPageSize),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < r.minPageSize {
		q.PageSize = r.minPageSize
	}
	if q.PageSize > r.maxPageSize {
		q.PageSize = r.maxPageSize
	}

	if status := c.Query("status"); status != "" {
		q.Filter = content.And(q.Filter, content.Eq("status", status))
	}
	q.Filter = content.And(q.Filter, FilterFor(r.CallerScope(c)))
	return q
}

// RelationQuery builds the candidate query for a relation picker: documents
// of the relation's target type, restricted to the caller's tenant exactly
// like a plain list. Returns the target type alongside the query.
func (r *Rewriter) RelationQuery(c *gin.Context, sourceType, fieldName string) (string, content.ListQuery, error) {
	def, ok := r.registry.Get(sourceType)
	if !ok {
		return "", content.ListQuery{}, content.ErrUnknownType
	}
	target, ok := def.RelationTarget(fieldName)
	if !ok {
		return "", content.ListQuery{}, ErrUnknownRelation
	}
	if _, ok := r.registry.Get(target); !ok {
		// The tenant relation targets no document type; its picker is
		// never exposed.
		return "", content.ListQuery{}, ErrUnknownRelation
	}
	return target, r.ListQuery(c), nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
