package permission

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backend/internal/content"
	"backend/internal/tenant"
)

const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionPublish = "publish"
)

// Actions every editor grant covers, in display order.
var editorActions = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionPublish}

// Service seeds and serves grants.
type Service struct {
	db         *gorm.DB
	registry   *content.Registry
	conditions *ConditionRegistry
	logger     *zap.Logger
}

func NewService(db *gorm.DB, registry *content.Registry, conditions *ConditionRegistry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, registry: registry, conditions: conditions, logger: logger}
}

// Conditions exposes the condition registry.
func (s *Service) Conditions() *ConditionRegistry { return s.conditions }

// EnsureEditorGrants seeds the tenant-restricted editor grants for every
// scoped content type. It runs on every boot: duplicate rows left behind by
// earlier seeders are removed first, then each grant is upserted in place, so
// reruns never multiply rows.
func (s *Service) EnsureEditorGrants(ctx context.Context) error {
	if err := s.dedupe(ctx); err != nil {
		return err
	}

	conds, err := json.Marshal([]string{ConditionSameTenant})
	if err != nil {
		return err
	}

	var seeded int
	for _, uid := range s.registry.TenantScopedUIDs() {
		for i, action := range editorActions {
			grant := Grant{
				Role:       tenant.RoleEditor,
				Action:     action,
				Subject:    uid,
				Conditions: conds,
				Sort:       i,
			}
			err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "role"}, {Name: "action"}, {Name: "subject"}},
				DoUpdates: clause.AssignmentColumns([]string{"conditions", "sort"}),
			}).Create(&grant).Error
			if err != nil {
				return err
			}
			seeded++
		}
	}

	s.logger.Info("editor grants ensured", zap.Int("count", seeded))
	return nil
}

// dedupe keeps the oldest row of each (role, action, subject) triple.
func (s *Service) dedupe(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec(
		`DELETE FROM grants WHERE id NOT IN (SELECT MIN(id) FROM grants GROUP BY role, action, subject)`,
	).Error
}

// ListGrants returns a role's grants ordered by subject and sort.
func (s *Service) ListGrants(ctx context.Context, role string) ([]Grant, error) {
	var grants []Grant
	err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("subject, sort").
		Find(&grants).Error
	return grants, err
}

// FilterForGrant evaluates a grant's conditions against the request context.
func (s *Service) FilterForGrant(ctx context.Context, g Grant) content.Filter {
	return s.conditions.FilterFor(ctx, g.ConditionNames())
}

// FilterForAction loads the grant covering one role/action/subject triple and
// evaluates its conditions. No grant means no permission: the caller gets a
// filter matching nothing. Lookup failures are fail-closed too.
func (s *Service) FilterForAction(ctx context.Context, role, action, subject string) content.Filter {
	var g Grant
	err := s.db.WithContext(ctx).
		Where("role = ? AND action = ? AND subject = ?", role, action, subject).
		First(&g).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("grant lookup failed",
				zap.String("role", role),
				zap.String("action", action),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
		return content.MatchNone()
	}
	return s.FilterForGrant(ctx, g)
}
