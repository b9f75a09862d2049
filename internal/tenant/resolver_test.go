package tenant

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeDirectory map[int64]string

func (d fakeDirectory) EmailByID(_ context.Context, id int64) (string, error) {
	return d[id], nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Tenant{}, &EditorAssignment{}))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, externalID, slug string) *Tenant {
	t.Helper()
	tn := &Tenant{ExternalID: externalID, Name: slug, Slug: slug}
	require.NoError(t, db.Create(tn).Error)
	return tn
}

func TestResolverResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("non editor is never scoped", func(t *testing.T) {
		db := newTestDB(t)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "who@example.org", Roles: []string{"author"}})
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("super admin is never scoped even with assignment", func(t *testing.T) {
		db := newTestDB(t)
		tn := seedTenant(t, db, "org-a", "org-a")
		require.NoError(t, db.Create(&EditorAssignment{Email: "boss@example.org", TenantID: tn.ID}).Error)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "boss@example.org", Roles: []string{RoleEditor, RoleSuperAdmin}})
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("editor with assignment resolves both identifier forms", func(t *testing.T) {
		db := newTestDB(t)
		tn := seedTenant(t, db, "org-a", "org-a")
		require.NoError(t, db.Create(&EditorAssignment{Email: "ed@example.org", TenantID: tn.ID}).Error)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "ed@example.org", Roles: []string{RoleEditor}})
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, tn.ID, s.TenantID)
		assert.Equal(t, "org-a", s.ExternalID)
	})

	t.Run("email comparison ignores case", func(t *testing.T) {
		db := newTestDB(t)
		tn := seedTenant(t, db, "org-a", "org-a")
		require.NoError(t, db.Create(&EditorAssignment{Email: "ed@example.org", TenantID: tn.ID}).Error)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "Ed@Example.ORG", Roles: []string{RoleEditor}})
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, tn.ID, s.TenantID)
	})

	t.Run("editor without assignment resolves to nil", func(t *testing.T) {
		db := newTestDB(t)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "lost@example.org", Roles: []string{RoleEditor}})
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("missing email falls back to the user directory", func(t *testing.T) {
		db := newTestDB(t)
		tn := seedTenant(t, db, "org-a", "org-a")
		require.NoError(t, db.Create(&EditorAssignment{Email: "ed@example.org", TenantID: tn.ID}).Error)
		r := NewResolver(db, nil, fakeDirectory{7: "ed@example.org"}, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 7, Roles: []string{RoleEditor}})
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, tn.ID, s.TenantID)
	})

	t.Run("assignment pointing at deleted tenant resolves to nil", func(t *testing.T) {
		db := newTestDB(t)
		require.NoError(t, db.Create(&EditorAssignment{Email: "ed@example.org", TenantID: 999}).Error)
		r := NewResolver(db, nil, nil, 0, nil)

		s, err := r.Resolve(ctx, Identity{UserID: 1, Email: "ed@example.org", Roles: []string{RoleEditor}})
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestScopeMatches(t *testing.T) {
	s := Scope{TenantID: 3, ExternalID: "org-c"}

	id := int64(3)
	other := int64(4)
	assert.True(t, s.Matches(&id, ""))
	assert.True(t, s.Matches(nil, "org-c"))
	assert.True(t, s.Matches(&other, "org-c"))
	assert.False(t, s.Matches(&other, "org-d"))
	assert.False(t, s.Matches(nil, ""))

	zero := Scope{}
	assert.False(t, zero.Matches(&id, "org-c"))
}
