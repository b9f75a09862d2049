package permission

import (
	"context"
	"fmt"
	"sync"

	"backend/internal/content"
	"backend/internal/scope"
	"backend/internal/tenant"
)

// ConditionSameTenant restricts a grant to records of the caller's tenant.
const ConditionSameTenant = "admin::is-same-tenant-as-user"

// ConditionHandler translates the request context into a document filter.
type ConditionHandler func(ctx context.Context) content.Filter

// Condition is a named, registerable grant restriction.
type Condition struct {
	Name        string
	DisplayName string
	Handler     ConditionHandler
}

// ConditionRegistry holds the conditions grants may reference.
type ConditionRegistry struct {
	mu         sync.RWMutex
	conditions map[string]Condition
	order      []string
}

func NewConditionRegistry() *ConditionRegistry {
	return &ConditionRegistry{conditions: make(map[string]Condition)}
}

// Register adds a condition. Names are unique.
func (r *ConditionRegistry) Register(c Condition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conditions[c.Name]; exists {
		return fmt.Errorf("permission: condition %q already registered", c.Name)
	}
	r.conditions[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Get returns a condition by name.
func (r *ConditionRegistry) Get(name string) (Condition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conditions[name]
	return c, ok
}

// All returns every condition in registration order.
func (r *ConditionRegistry) All() []Condition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Condition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.conditions[name])
	}
	return out
}

// FilterFor conjoins the filters of the named conditions. A reference to an
// unregistered condition never widens access: it matches nothing.
func (r *ConditionRegistry) FilterFor(ctx context.Context, names []string) content.Filter {
	var f content.Filter
	for _, name := range names {
		c, ok := r.Get(name)
		if !ok {
			return content.MatchNone()
		}
		f = content.And(f, c.Handler(ctx))
	}
	return f
}

// DefaultConditions builds a registry with the built-in tenant condition.
func DefaultConditions() *ConditionRegistry {
	r := NewConditionRegistry()
	_ = r.Register(Condition{
		Name:        ConditionSameTenant,
		DisplayName: "Same tenant as user",
		Handler:     sameTenantFilter,
	})
	return r
}

// sameTenantFilter restricts to the caller's tenant. A request whose scope
// was never resolved matches nothing.
func sameTenantFilter(ctx context.Context) content.Filter {
	s, ok := tenant.ScopeFromContext(ctx)
	if !ok {
		return content.MatchNone()
	}
	return scope.FilterFor(s)
}
