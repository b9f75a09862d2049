package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("tenant: not found")
	ErrSlugExists       = errors.New("tenant: slug already exists")
	ErrExternalIDExists = errors.New("tenant: external id already exists")
	// ErrAssignmentExists is returned when a second assignment is created for
	// the same email. One editor maps to exactly one tenant; reassignment goes
	// through UpdateAssignment.
	ErrAssignmentExists = errors.New("tenant: editor already assigned")
)

// Service manages tenants and editor assignments. Assignments are
// operator-managed: created when provisioning an editor, updated when
// reassigning, never auto-created.
type Service struct {
	db       *gorm.DB
	resolver *Resolver
	logger   *zap.Logger
}

// NewService builds a Service. The resolver is used only for cache
// invalidation on assignment writes and may be nil in tests.
func NewService(db *gorm.DB, resolver *Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, resolver: resolver, logger: logger}
}

// CreateTenantParams describes a new organization.
type CreateTenantParams struct {
	ExternalID  string
	Name        string
	Slug        string
	Domain      string
	Description string
}

// CreateTenant registers a new organization. ExternalID and Slug must be
// unique across the deployment.
func (s *Service) CreateTenant(ctx context.Context, params CreateTenantParams) (*Tenant, error) {
	t := &Tenant{
		ExternalID:  strings.TrimSpace(params.ExternalID),
		Name:        strings.TrimSpace(params.Name),
		Slug:        strings.TrimSpace(params.Slug),
		Domain:      strings.TrimSpace(params.Domain),
		Description: params.Description,
	}
	if t.ExternalID == "" || t.Name == "" || t.Slug == "" {
		return nil, fmt.Errorf("tenant: external id, name and slug are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Tenant{}).Where("slug = ?", t.Slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	if err := s.db.WithContext(ctx).Model(&Tenant{}).Where("external_id = ?", t.ExternalID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrExternalIDExists
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	s.logger.Info("tenant created", zap.Int64("id", t.ID), zap.String("slug", t.Slug))
	return t, nil
}

// GetTenant loads one tenant by numeric id.
func (s *Service) GetTenant(ctx context.Context, id int64) (*Tenant, error) {
	var t Tenant
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetTenantByExternalID loads one tenant by its stable external identifier.
func (s *Service) GetTenantByExternalID(ctx context.Context, externalID string) (*Tenant, error) {
	var t Tenant
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants with a total count.
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tenants []*Tenant
	q := s.db.WithContext(ctx).Order("name")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&tenants).Error; err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// UpdateTenantParams carries optional tenant updates.
type UpdateTenantParams struct {
	Name        *string
	Domain      *string
	Description *string
}

// UpdateTenant applies the non-nil fields. ExternalID and Slug are immutable
// once records reference them.
func (s *Service) UpdateTenant(ctx context.Context, id int64, params UpdateTenantParams) (*Tenant, error) {
	t, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if params.Name != nil {
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Domain != nil {
		updates["domain"] = strings.TrimSpace(*params.Domain)
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}
	if len(updates) == 0 {
		return t, nil
	}
	if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetTenant(ctx, id)
}

// AssignEditor creates the assignment for an editor email. The email is
// lowercased before persisting and a second assignment for the same email is
// rejected; the unique index backs this up against concurrent writers.
func (s *Service) AssignEditor(ctx context.Context, email string, tenantID int64) (*EditorAssignment, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("tenant: email is required")
	}
	if _, err := s.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&EditorAssignment{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAssignmentExists
	}

	a := &EditorAssignment{Email: email, TenantID: tenantID}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx, email)
	s.logger.Info("editor assigned", zap.String("email", email), zap.Int64("tenant_id", tenantID))
	return a, nil
}

// ReassignEditor moves an existing assignment to a different tenant.
func (s *Service) ReassignEditor(ctx context.Context, email string, tenantID int64) (*EditorAssignment, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.GetTenant(ctx, tenantID); err != nil {
		return nil, err
	}

	var a EditorAssignment
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&a).Update("tenant_id", tenantID).Error; err != nil {
		return nil, err
	}
	a.TenantID = tenantID
	s.invalidate(ctx, email)
	s.logger.Info("editor reassigned", zap.String("email", email), zap.Int64("tenant_id", tenantID))
	return &a, nil
}

// RemoveEditor deletes the assignment for an email.
func (s *Service) RemoveEditor(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&EditorAssignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, email)
	return nil
}

// ListAssignments returns all assignments with their tenants preloaded.
func (s *Service) ListAssignments(ctx context.Context) ([]*EditorAssignment, error) {
	var assignments []*EditorAssignment
	err := s.db.WithContext(ctx).Preload("Tenant").Order("email").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *Service) invalidate(ctx context.Context, email string) {
	if s.resolver != nil {
		s.resolver.Invalidate(ctx, email)
	}
}
