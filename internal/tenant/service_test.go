package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTenants(t *testing.T) {
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)

		created, err := svc.CreateTenant(ctx, CreateTenantParams{
			ExternalID: "org-a", Name: "Org A", Slug: "org-a",
		})
		require.NoError(t, err)

		got, err := svc.GetTenantByExternalID(ctx, "org-a")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)

		_, err := svc.CreateTenant(ctx, CreateTenantParams{ExternalID: "org-a", Name: "A", Slug: "same"})
		require.NoError(t, err)
		_, err = svc.CreateTenant(ctx, CreateTenantParams{ExternalID: "org-b", Name: "B", Slug: "same"})
		assert.ErrorIs(t, err, ErrSlugExists)
	})

	t.Run("duplicate external id rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)

		_, err := svc.CreateTenant(ctx, CreateTenantParams{ExternalID: "same", Name: "A", Slug: "org-a"})
		require.NoError(t, err)
		_, err = svc.CreateTenant(ctx, CreateTenantParams{ExternalID: "same", Name: "B", Slug: "org-b"})
		assert.ErrorIs(t, err, ErrExternalIDExists)
	})

	t.Run("update leaves external id and slug alone", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)

		created, err := svc.CreateTenant(ctx, CreateTenantParams{ExternalID: "org-a", Name: "A", Slug: "org-a"})
		require.NoError(t, err)

		name := "Renamed"
		updated, err := svc.UpdateTenant(ctx, created.ID, UpdateTenantParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "org-a", updated.ExternalID)
		assert.Equal(t, "org-a", updated.Slug)
	})
}

func TestServiceAssignments(t *testing.T) {
	ctx := context.Background()

	t.Run("assign lowercases the email", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)
		tn := seedTenant(t, db, "org-a", "org-a")

		a, err := svc.AssignEditor(ctx, "  Ed@Example.ORG ", tn.ID)
		require.NoError(t, err)
		assert.Equal(t, "ed@example.org", a.Email)
	})

	t.Run("second assignment for the same email rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)
		a := seedTenant(t, db, "org-a", "org-a")
		b := seedTenant(t, db, "org-b", "org-b")

		_, err := svc.AssignEditor(ctx, "ed@example.org", a.ID)
		require.NoError(t, err)
		_, err = svc.AssignEditor(ctx, "ED@example.org", b.ID)
		assert.ErrorIs(t, err, ErrAssignmentExists)
	})

	t.Run("assignment to unknown tenant rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)

		_, err := svc.AssignEditor(ctx, "ed@example.org", 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reassign moves the editor", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewService(db, nil, nil)
		a := seedTenant(t, db, "org-a", "org-a")
		b := seedTenant(t, db, "org-b", "org-b")

		_, err := svc.AssignEditor(ctx, "ed@example.org", a.ID)
		require.NoError(t, err)

		moved, err := svc.ReassignEditor(ctx, "ed@example.org", b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, moved.TenantID)
	})

	t.Run("remove then resolve finds nothing", func(t *testing.T) {
		db := newTestDB(t)
		resolver := NewResolver(db, nil, nil, 0, nil)
		svc := NewService(db, resolver, nil)
		tn := seedTenant(t, db, "org-a", "org-a")

		_, err := svc.AssignEditor(ctx, "ed@example.org", tn.ID)
		require.NoError(t, err)
		require.NoError(t, svc.RemoveEditor(ctx, "ed@example.org"))

		s, err := resolver.Resolve(ctx, Identity{Email: "ed@example.org", Roles: []string{RoleEditor}})
		require.NoError(t, err)
		assert.Nil(t, s)

		assert.ErrorIs(t, svc.RemoveEditor(ctx, "ed@example.org"), ErrNotFound)
	})
}
