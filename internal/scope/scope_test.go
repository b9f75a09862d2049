package scope

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"backend/internal/content"
	"backend/internal/tenant"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tenant.Tenant{}, &tenant.EditorAssignment{}, &content.Document{}))
	return db
}

func TestScopeForIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("non editor is unrestricted", func(t *testing.T) {
		db := newTestDB(t)
		r := tenant.NewResolver(db, nil, nil, 0, nil)

		s := ScopeForIdentity(ctx, r, tenant.Identity{Roles: []string{"author"}}, nil)
		assert.Nil(t, s)
	})

	t.Run("resolved editor gets the tenant scope", func(t *testing.T) {
		db := newTestDB(t)
		tn := &tenant.Tenant{ExternalID: "org-a", Name: "A", Slug: "org-a"}
		require.NoError(t, db.Create(tn).Error)
		require.NoError(t, db.Create(&tenant.EditorAssignment{Email: "ed@example.org", TenantID: tn.ID}).Error)
		r := tenant.NewResolver(db, nil, nil, 0, nil)

		s := ScopeForIdentity(ctx, r, tenant.Identity{Email: "ed@example.org", Roles: []string{tenant.RoleEditor}}, nil)
		require.NotNil(t, s)
		assert.Equal(t, tn.ID, s.TenantID)
	})

	t.Run("unassigned editor gets the zero scope", func(t *testing.T) {
		db := newTestDB(t)
		r := tenant.NewResolver(db, nil, nil, 0, nil)

		s := ScopeForIdentity(ctx, r, tenant.Identity{Email: "lost@example.org", Roles: []string{tenant.RoleEditor}}, nil)
		require.NotNil(t, s)
		assert.True(t, s.Zero())
	})
}

func TestFilterFor(t *testing.T) {
	t.Run("nil scope restricts nothing", func(t *testing.T) {
		assert.True(t, FilterFor(nil).IsZero())
	})

	t.Run("zero scope matches nothing", func(t *testing.T) {
		assert.Equal(t, content.MatchNone(), FilterFor(&tenant.Scope{}))
	})

	t.Run("resolved scope accepts either stored form", func(t *testing.T) {
		f := FilterFor(&tenant.Scope{TenantID: 3, ExternalID: "org-c"})
		require.Len(t, f.Or, 2)
		assert.Equal(t, content.Eq("tenant_id", int64(3)), f.Or[0])
		assert.Equal(t, content.Eq("tenant_ref", "org-c"), f.Or[1])
	})
}
