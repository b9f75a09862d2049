package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/content"
	"backend/internal/tenant"
)

func newTestInterceptor(t *testing.T) *Interceptor {
	t.Helper()
	db := newTestDB(t)
	store := content.NewStore(db, content.DefaultRegistry())
	return NewInterceptor(store, NewAutoAssigner(nil, nil), nil)
}

func scopedCtx(tenantID int64, externalID string) context.Context {
	return tenant.WithScope(context.Background(), &tenant.Scope{TenantID: tenantID, ExternalID: externalID})
}

func unrestrictedCtx() context.Context {
	return tenant.WithScope(context.Background(), nil)
}

func seed(t *testing.T, i *Interceptor, contentType, title string, tenantID *int64, tenantRef string) *content.Document {
	t.Helper()
	doc := &content.Document{ContentType: contentType, Title: title, TenantID: tenantID, TenantRef: tenantRef}
	require.NoError(t, i.Store().Create(context.Background(), doc))
	return doc
}

func TestInterceptorFindMany(t *testing.T) {
	t.Run("scoped caller only sees own tenant", func(t *testing.T) {
		i := newTestInterceptor(t)
		idA, idB := int64(1), int64(2)
		seed(t, i, "article", "mine-fk", &idA, "")
		seed(t, i, "article", "mine-ref", nil, "org-a")
		seed(t, i, "article", "theirs", &idB, "org-b")

		docs, total, err := i.FindMany(scopedCtx(1, "org-a"), "article", content.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, d := range docs {
			assert.NotEqual(t, "theirs", d.Title)
		}
	})

	t.Run("zero scope sees nothing", func(t *testing.T) {
		i := newTestInterceptor(t)
		seed(t, i, "article", "a", nil, "org-a")

		ctx := tenant.WithScope(context.Background(), &tenant.Scope{})
		_, total, err := i.FindMany(ctx, "article", content.ListQuery{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("unrestricted caller sees everything", func(t *testing.T) {
		i := newTestInterceptor(t)
		idA := int64(1)
		seed(t, i, "article", "a", &idA, "")
		seed(t, i, "article", "b", nil, "org-b")

		_, total, err := i.FindMany(unrestrictedCtx(), "article", content.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("missing request context is unrestricted", func(t *testing.T) {
		i := newTestInterceptor(t)
		seed(t, i, "article", "a", nil, "org-a")

		_, total, err := i.FindMany(context.Background(), "article", content.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestInterceptorSingleRecordGuard(t *testing.T) {
	t.Run("foreign record denied on every operation", func(t *testing.T) {
		i := newTestInterceptor(t)
		idB := int64(2)
		doc := seed(t, i, "article", "theirs", &idB, "org-b")
		ctx := scopedCtx(1, "org-a")

		_, err := i.FindOne(ctx, "article", doc.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = i.Update(ctx, "article", doc.ID, content.UpdateParams{})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = i.Delete(ctx, "article", doc.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = i.Publish(ctx, "article", doc.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = i.Unpublish(ctx, "article", doc.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("own record allowed via either identifier form", func(t *testing.T) {
		i := newTestInterceptor(t)
		idA := int64(1)
		byFK := seed(t, i, "article", "fk", &idA, "")
		byRef := seed(t, i, "article", "ref", nil, "org-a")
		ctx := scopedCtx(1, "org-a")

		_, err := i.FindOne(ctx, "article", byFK.ID)
		assert.NoError(t, err)
		_, err = i.FindOne(ctx, "article", byRef.ID)
		assert.NoError(t, err)
	})

	t.Run("tenant-less record stays reachable for a resolved editor", func(t *testing.T) {
		i := newTestInterceptor(t)
		doc := seed(t, i, "article", "fresh", nil, "")

		_, err := i.FindOne(scopedCtx(1, "org-a"), "article", doc.ID)
		assert.NoError(t, err)
	})

	t.Run("missing record is not found, not forbidden", func(t *testing.T) {
		i := newTestInterceptor(t)
		_, err := i.FindOne(scopedCtx(1, "org-a"), "article", "nope")
		assert.ErrorIs(t, err, content.ErrNotFound)
	})
}

func TestInterceptorCreate(t *testing.T) {
	t.Run("stamps the creator's tenant", func(t *testing.T) {
		i := newTestInterceptor(t)
		doc := &content.Document{ContentType: "article", Title: "new"}
		require.NoError(t, i.Create(scopedCtx(1, "org-a"), doc))

		require.NotNil(t, doc.TenantID)
		assert.Equal(t, int64(1), *doc.TenantID)
		assert.Equal(t, "org-a", doc.TenantRef)
	})

	t.Run("discards a client-supplied tenant", func(t *testing.T) {
		i := newTestInterceptor(t)
		smuggled := int64(9)
		doc := &content.Document{ContentType: "article", Title: "new", TenantID: &smuggled, TenantRef: "org-x"}
		require.NoError(t, i.Create(scopedCtx(1, "org-a"), doc))

		require.NotNil(t, doc.TenantID)
		assert.Equal(t, int64(1), *doc.TenantID)
		assert.Equal(t, "org-a", doc.TenantRef)
	})

	t.Run("unscoped creator leaves the tenant unset", func(t *testing.T) {
		i := newTestInterceptor(t)
		smuggled := int64(9)
		doc := &content.Document{ContentType: "article", Title: "import", TenantID: &smuggled}
		require.NoError(t, i.Create(unrestrictedCtx(), doc))

		assert.Nil(t, doc.TenantID)
		assert.Empty(t, doc.TenantRef)
	})
}
