package tenant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/metrics"
)

// UserDirectory looks up admin-user details owned by the auth layer. The
// resolver only ever needs the email behind a numeric user id.
type UserDirectory interface {
	EmailByID(ctx context.Context, id int64) (string, error)
}

const (
	scopeCacheKeyPrefix = "tenant:scope:"
	scopeCacheNone      = "none"
)

// Resolver answers the single question every interception point asks: which
// tenant does this caller belong to. It is the one shared implementation;
// every consumer goes through it so the failure policy is applied uniformly.
type Resolver struct {
	db       *gorm.DB
	rdb      redis.UniversalClient
	users    UserDirectory
	cacheTTL time.Duration
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewResolver builds a Resolver. The Redis client is optional; without it
// every call goes to the database, which is acceptable only for tests.
func NewResolver(db *gorm.DB, rdb redis.UniversalClient, users UserDirectory, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		db:       db,
		rdb:      rdb,
		users:    users,
		cacheTTL: cacheTTL,
		logger:   logger,
		tracer:   otel.Tracer("backend/internal/tenant"),
	}
}

// Resolve returns the tenant scope for the given identity, or nil when the
// caller is unrestricted. Only holders of the editor role are ever scoped; a
// super-administrator is never scoped even if an assignment row exists for
// their email. A nil result with a nil error means "no restriction"; callers
// that require fail-closed behavior must map an editor with a nil scope to a
// match-nothing filter themselves (see scope.ScopeForIdentity).
func (r *Resolver) Resolve(ctx context.Context, id Identity) (*Scope, error) {
	ctx, span := r.tracer.Start(ctx, "tenant.Resolve")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.ScopeResolutionDuration.Observe(time.Since(start).Seconds())
	}()

	if !id.IsEditor() || id.IsSuperAdmin() {
		metrics.ScopeResolutionsTotal.WithLabelValues("none").Inc()
		return nil, nil
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" && id.UserID > 0 && r.users != nil {
		found, err := r.users.EmailByID(ctx, id.UserID)
		if err != nil {
			metrics.ScopeResolutionsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("look up user %d: %w", id.UserID, err)
		}
		email = strings.ToLower(strings.TrimSpace(found))
	}
	if email == "" {
		metrics.ScopeResolutionsTotal.WithLabelValues("none").Inc()
		return nil, nil
	}
	span.SetAttributes(attribute.String("tenant.editor_email", email))

	if scope, ok := r.cacheGet(ctx, email); ok {
		metrics.ScopeResolutionsTotal.WithLabelValues("cached").Inc()
		return scope, nil
	}

	scope, err := r.lookup(ctx, email)
	if err != nil {
		metrics.ScopeResolutionsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}

	r.cacheSet(ctx, email, scope)
	if scope == nil {
		metrics.ScopeResolutionsTotal.WithLabelValues("none").Inc()
	} else {
		metrics.ScopeResolutionsTotal.WithLabelValues("resolved").Inc()
		span.SetAttributes(attribute.Int64("tenant.id", scope.TenantID))
	}
	return scope, nil
}

// lookup scans the assignment table by lowered email. The unique index makes
// more than one row impossible for new data; a duplicate found anyway is
// pre-index legacy data and is reported as a setup error, with the lowest id
// winning deterministically.
func (r *Resolver) lookup(ctx context.Context, email string) (*Scope, error) {
	var assignments []EditorAssignment
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", email).
		Order("id").
		Limit(2).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("look up assignment for %s: %w", email, err)
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	if len(assignments) > 1 {
		r.logger.Error("duplicate editor assignments, using lowest id",
			zap.String("email", email),
			zap.Int64("assignment_id", assignments[0].ID),
		)
	}

	var t Tenant
	err = r.db.WithContext(ctx).First(&t, assignments[0].TenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The linked tenant was deleted; treat as unassigned.
		r.logger.Warn("editor assignment points at missing tenant",
			zap.String("email", email),
			zap.Int64("tenant_id", assignments[0].TenantID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tenant %d: %w", assignments[0].TenantID, err)
	}

	return &Scope{TenantID: t.ID, ExternalID: t.ExternalID}, nil
}

// Invalidate drops the cached scope for an email. Called by the assignment
// service on every write.
func (r *Resolver) Invalidate(ctx context.Context, email string) {
	if r.rdb == nil {
		return
	}
	key := scopeCacheKeyPrefix + strings.ToLower(strings.TrimSpace(email))
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("invalidate scope cache", zap.String("email", email), zap.Error(err))
	}
}

func (r *Resolver) cacheGet(ctx context.Context, email string) (*Scope, bool) {
	if r.rdb == nil {
		return nil, false
	}
	val, err := r.rdb.Get(ctx, scopeCacheKeyPrefix+email).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("scope cache read", zap.Error(err))
		}
		return nil, false
	}
	if val == scopeCacheNone {
		return nil, true
	}
	id, ext, ok := strings.Cut(val, "|")
	if !ok {
		return nil, false
	}
	tenantID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, false
	}
	return &Scope{TenantID: tenantID, ExternalID: ext}, true
}

func (r *Resolver) cacheSet(ctx context.Context, email string, scope *Scope) {
	if r.rdb == nil || r.cacheTTL <= 0 {
		return
	}
	val := scopeCacheNone
	if scope != nil {
		val = strconv.FormatInt(scope.TenantID, 10) + "|" + scope.ExternalID
	}
	if err := r.rdb.Set(ctx, scopeCacheKeyPrefix+email, val, r.cacheTTL).Err(); err != nil {
		r.logger.Warn("scope cache write", zap.Error(err))
	}
}
