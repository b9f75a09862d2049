// Package scope enforces tenant isolation over the document layer. It is a
// set of interception points that all consult the same resolver and apply a
// single failure policy: an editor that cannot be tied to a tenant matches
// nothing, while callers without the editor role are never restricted.
package scope

import (
	"context"

	"go.uber.org/zap"

	"backend/internal/content"
	"backend/internal/tenant"
)

// ScopeForIdentity resolves the caller's tenant scope and applies the
// failure policy uniformly:
//
//   - no editor role        -> nil (unrestricted)
//   - editor, resolved      -> the tenant scope
//   - editor, no assignment -> zero scope (match nothing)
//   - editor, lookup failed -> zero scope (match nothing)
//
// Resolution failures are logged and never propagate; the only user-visible
// error this package produces is ErrForbidden from the interceptor.
func ScopeForIdentity(ctx context.Context, resolver *tenant.Resolver, id tenant.Identity, logger *zap.Logger) *tenant.Scope {
	if !id.IsEditor() || id.IsSuperAdmin() {
		return nil
	}
	s, err := resolver.Resolve(ctx, id)
	if err != nil {
		if logger != nil {
			logger.Warn("tenant resolution failed, restricting editor to nothing",
				zap.Int64("user_id", id.UserID),
				zap.Error(err),
			)
		}
		return &tenant.Scope{}
	}
	if s == nil {
		return &tenant.Scope{}
	}
	return s
}

// FilterFor translates a scope into a document filter. A nil scope restricts
// nothing; a zero scope matches nothing; otherwise the filter accepts either
// stored form of the tenant relation.
func FilterFor(s *tenant.Scope) content.Filter {
	if s == nil {
		return content.Filter{}
	}
	if s.Zero() {
		return content.MatchNone()
	}
	return content.Or(
		content.Eq("tenant_id", s.TenantID),
		content.Eq("tenant_ref", s.ExternalID),
	)
}
