package content

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"go.uber.org/zap"

	"backend/internal/auth"
	contentpkg "backend/internal/content"
	"backend/internal/permission"
	"backend/internal/scope"
	"backend/internal/tenant"
)

type testApp struct {
	router *gin.Engine
	store  *contentpkg.Store
	db     *gorm.DB
}

// identityMiddleware plays the role of the auth and scope middleware without
// tokens: it attaches the given identity and resolves its scope directly.
func identityMiddleware(resolver *tenant.Resolver, id tenant.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.IdentityContextKey, id)
		ctx := tenant.WithIdentity(c.Request.Context(), id)
		s := scope.ScopeForIdentity(ctx, resolver, id, nil)
		c.Request = c.Request.WithContext(tenant.WithScope(ctx, s))
		c.Next()
	}
}

func newTestApp(t *testing.T, id tenant.Identity) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tenant.Tenant{}, &tenant.EditorAssignment{}, &contentpkg.Document{}, &permission.Grant{},
	))

	registry := contentpkg.DefaultRegistry()
	store := contentpkg.NewStore(db, registry)
	resolver := tenant.NewResolver(db, nil, nil, 0, nil)
	interceptor := scope.NewInterceptor(store, scope.NewAutoAssigner(nil, nil), nil)
	rewriter := scope.NewRewriter(resolver, auth.NewJWTService("s", "t", time.Hour), registry, 10, 25, 100, nil)
	grants := permission.NewService(db, registry, permission.DefaultConditions(), zap.NewNop())
	require.NoError(t, grants.EnsureEditorGrants(context.Background()))
	handler := NewDocumentsHandler(interceptor, rewriter, grants, zap.NewNop())

	router := gin.New()
	group := router.Group("/content/:type")
	group.Use(identityMiddleware(resolver, id))
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	return &testApp{router: router, store: store, db: db}
}

func (a *testApp) seedTenantWithEditor(t *testing.T, externalID, email string) *tenant.Tenant {
	t.Helper()
	tn := &tenant.Tenant{ExternalID: externalID, Name: externalID, Slug: externalID}
	require.NoError(t, a.db.Create(tn).Error)
	require.NoError(t, a.db.Create(&tenant.EditorAssignment{Email: email, TenantID: tn.ID}).Error)
	return tn
}

func (a *testApp) do(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func editorIdentity(email string) tenant.Identity {
	return tenant.Identity{UserID: 7, Email: email, Roles: []string{tenant.RoleEditor}}
}

func TestDocumentsListIsolation(t *testing.T) {
	app := newTestApp(t, editorIdentity("ed@example.org"))
	tn := app.seedTenantWithEditor(t, "org-a", "ed@example.org")

	other := int64(tn.ID + 1)
	require.NoError(t, app.store.Create(t.Context(), &contentpkg.Document{
		ContentType: "article", Title: "mine", TenantID: &tn.ID,
	}))
	require.NoError(t, app.store.Create(t.Context(), &contentpkg.Document{
		ContentType: "article", Title: "theirs", TenantID: &other, TenantRef: "org-b",
	}))

	w := app.do(http.MethodGet, "/content/article", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items []contentpkg.Document `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "mine", resp.Data.Items[0].Title)
}

func TestDocumentsForeignRecordLooksMissing(t *testing.T) {
	app := newTestApp(t, editorIdentity("ed@example.org"))
	app.seedTenantWithEditor(t, "org-a", "ed@example.org")

	foreign := int64(99)
	doc := &contentpkg.Document{ContentType: "article", Title: "theirs", TenantID: &foreign, TenantRef: "org-b"}
	require.NoError(t, app.store.Create(t.Context(), doc))

	got := app.do(http.MethodGet, "/content/article/"+doc.ID, nil)
	missing := app.do(http.MethodGet, "/content/article/does-not-exist", nil)

	assert.Equal(t, http.StatusNotFound, got.Code)
	assert.Equal(t, missing.Code, got.Code)
	assert.JSONEq(t, missing.Body.String(), got.Body.String())

	del := app.do(http.MethodDelete, "/content/article/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, del.Code)
}

func TestDocumentsCreateStampsTenant(t *testing.T) {
	app := newTestApp(t, editorIdentity("ed@example.org"))
	tn := app.seedTenantWithEditor(t, "org-a", "ed@example.org")

	w := app.do(http.MethodPost, "/content/article", gin.H{"title": "fresh"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data contentpkg.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.TenantID)
	assert.Equal(t, tn.ID, *resp.Data.TenantID)
	assert.Equal(t, "org-a", resp.Data.TenantRef)
	assert.Equal(t, int64(7), resp.Data.CreatedByID)
}

func TestDocumentsUnassignedEditorSeesNothing(t *testing.T) {
	app := newTestApp(t, editorIdentity("lost@example.org"))

	require.NoError(t, app.store.Create(t.Context(), &contentpkg.Document{
		ContentType: "article", Title: "someone's", TenantRef: "org-a",
	}))

	w := app.do(http.MethodGet, "/content/article", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items []contentpkg.Document `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
}

func TestDocumentsListConsultsGrants(t *testing.T) {
	app := newTestApp(t, editorIdentity("ed@example.org"))
	tn := app.seedTenantWithEditor(t, "org-a", "ed@example.org")

	require.NoError(t, app.store.Create(t.Context(), &contentpkg.Document{
		ContentType: "article", Title: "mine", TenantID: &tn.ID, TenantRef: "org-a",
	}))

	w := app.do(http.MethodGet, "/content/article", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items []contentpkg.Document `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)

	// Revoking the grants locks editors out of their own records: the read
	// grant is evaluated on every list request, not just at seed time.
	require.NoError(t, app.db.Exec(`DELETE FROM grants`).Error)

	w = app.do(http.MethodGet, "/content/article", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Data.Items = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)
}

func TestDocumentsUpdateClearsTitle(t *testing.T) {
	app := newTestApp(t, editorIdentity("ed@example.org"))
	app.seedTenantWithEditor(t, "org-a", "ed@example.org")

	w := app.do(http.MethodPost, "/content/article", gin.H{"title": "original"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data contentpkg.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// An absent title leaves the stored one alone.
	w = app.do(http.MethodPut, "/content/article/"+created.Data.ID, gin.H{"data": gin.H{"body": "x"}})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Data contentpkg.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "original", updated.Data.Title)

	// An explicit empty title clears it.
	w = app.do(http.MethodPut, "/content/article/"+created.Data.ID, gin.H{"title": ""})
	require.Equal(t, http.StatusOK, w.Code)
	updated.Data = contentpkg.Document{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Empty(t, updated.Data.Title)
}

func TestDocumentsUnknownType(t *testing.T) {
	app := newTestApp(t, tenant.Identity{UserID: 1, Roles: []string{tenant.RoleSuperAdmin}})
	w := app.do(http.MethodGet, "/content/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
