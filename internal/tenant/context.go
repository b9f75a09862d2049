package tenant

import (
	"context"
	"strings"
)

// Role names recognized by the isolation layer.
const (
	RoleEditor     = "editor"
	RoleSuperAdmin = "super_admin"
)

// Identity describes the authenticated admin user for the current request.
// It is populated once at the HTTP boundary and carried on the context.
type Identity struct {
	UserID int64
	Email  string
	Roles  []string
}

// HasRole reports whether the identity holds the given role, ignoring case
// and surrounding whitespace.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// IsEditor reports whether the identity holds the editor role.
func (id Identity) IsEditor() bool { return id.HasRole(RoleEditor) }

// IsSuperAdmin reports whether the identity holds the super-admin role.
func (id Identity) IsSuperAdmin() bool { return id.HasRole(RoleSuperAdmin) }

// Scope is the resolved tenant restriction for the current caller. It carries
// both identifier forms of the tenant relation so consumers can match records
// stored either way. The zero Scope means the caller holds the editor role
// but could not be resolved to a tenant; such callers must match nothing.
type Scope struct {
	TenantID   int64
	ExternalID string
}

// Zero reports whether the scope identifies no tenant at all.
func (s Scope) Zero() bool { return s.TenantID == 0 && s.ExternalID == "" }

// Matches reports whether a record's tenant relation, given in either stored
// form, belongs to the scoped tenant. Records may carry a numeric id, an
// external identifier, or both.
func (s Scope) Matches(tenantID *int64, tenantRef string) bool {
	if s.Zero() {
		return false
	}
	if tenantID != nil && *tenantID == s.TenantID {
		return true
	}
	if tenantRef != "" && tenantRef == s.ExternalID {
		return true
	}
	return false
}

type identityContextKey struct{}
type scopeContextKey struct{}

// WithIdentity attaches the authenticated identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity attached by the auth middleware.
// Absence is not an error: callers must treat a missing identity as an
// unauthenticated or system caller.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// WithScope attaches the resolved tenant scope to the context. A nil scope is
// valid and means the caller is unrestricted.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext retrieves the tenant scope resolved for the current
// request. The second return value reports whether resolution ran at all;
// a (nil, true) result means the caller was resolved and is unrestricted.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	v := ctx.Value(scopeContextKey{})
	if v == nil {
		return nil, false
	}
	s, ok := v.(*Scope)
	if !ok {
		return nil, false
	}
	return s, true
}
