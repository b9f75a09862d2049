package content

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"backend/api/handlers/common"
	"backend/internal/auth"
	contentpkg "backend/internal/content"
	"backend/internal/permission"
	"backend/internal/scope"
	"backend/internal/tenant"
)

// DocumentsHandler serves the admin document CRUD surface. Everything goes
// through the scope interceptor; this layer only translates HTTP.
type DocumentsHandler struct {
	interceptor *scope.Interceptor
	rewriter    *scope.Rewriter
	grants      *permission.Service
	registry    *contentpkg.Registry
	logger      *zap.Logger
}

func NewDocumentsHandler(interceptor *scope.Interceptor, rewriter *scope.Rewriter, grants *permission.Service, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		interceptor: interceptor,
		rewriter:    rewriter,
		grants:      grants,
		registry:    interceptor.Store().Registry(),
		logger:      logger,
	}
}

// List returns a page of documents of one type. Editors go through the
// permission engine: the read grant's conditions are evaluated against the
// request and conjoined into the query, on top of the rewriter's own filter.
func (h *DocumentsHandler) List(c *gin.Context) {
	contentType := c.Param("type")
	q := h.rewriter.ListQuery(c)
	q.Filter = contentpkg.And(q.Filter, h.grantFilter(c, permission.ActionRead, contentType))

	docs, total, err := h.interceptor.FindMany(c.Request.Context(), contentType, q)
	if err != nil {
		h.respondError(c, err, "list documents")
		return
	}
	common.RespondList(c, docs, common.NewPaginationMeta(q.Page, q.PageSize, total))
}

// grantFilter consults the permission engine for the caller's grant on one
// action/subject pair. Only editors are subject to grants; super-admins and
// other roles get a zero filter, which And drops.
func (h *DocumentsHandler) grantFilter(c *gin.Context, action, subject string) contentpkg.Filter {
	id, ok := auth.GetIdentity(c)
	if !ok || !id.IsEditor() || id.IsSuperAdmin() || !h.registry.IsTenantScoped(subject) {
		return contentpkg.Filter{}
	}
	return h.grants.FilterForAction(c.Request.Context(), tenant.RoleEditor, action, subject)
}

// Get returns one document.
func (h *DocumentsHandler) Get(c *gin.Context) {
	doc, err := h.interceptor.FindOne(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "load document")
		return
	}
	common.RespondOK(c, doc)
}

// DocumentRequest is the create/update payload. Title is a pointer so an
// update can tell "field absent" from "clear the title". Any tenant value a
// client smuggles into Data is irrelevant: the tenant columns are never read
// from the payload.
type DocumentRequest struct {
	Title *string        `json:"title"`
	Data  datatypes.JSON `json:"data"`
}

// Create persists a new document of the given type.
func (h *DocumentsHandler) Create(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	id, _ := auth.GetIdentity(c)
	doc := &contentpkg.Document{
		ContentType: c.Param("type"),
		Data:        req.Data,
		CreatedByID: id.UserID,
		UpdatedByID: id.UserID,
	}
	if req.Title != nil {
		doc.Title = *req.Title
	}
	if err := h.interceptor.Create(c.Request.Context(), doc); err != nil {
		h.respondError(c, err, "create document")
		return
	}
	common.RespondCreated(c, doc)
}

// Update applies changes to one document.
func (h *DocumentsHandler) Update(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	id, _ := auth.GetIdentity(c)
	params := contentpkg.UpdateParams{
		Title:       req.Title,
		Data:        req.Data,
		UpdatedByID: id.UserID,
	}

	doc, err := h.interceptor.Update(c.Request.Context(), c.Param("type"), c.Param("id"), params)
	if err != nil {
		h.respondError(c, err, "update document")
		return
	}
	common.RespondOK(c, doc)
}

// Delete removes one document.
func (h *DocumentsHandler) Delete(c *gin.Context) {
	doc, err := h.interceptor.Delete(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "delete document")
		return
	}
	common.RespondOK(c, doc)
}

// Publish marks one document published.
func (h *DocumentsHandler) Publish(c *gin.Context) {
	doc, err := h.interceptor.Publish(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "publish document")
		return
	}
	common.RespondOK(c, doc)
}

// Unpublish reverts one document to draft.
func (h *DocumentsHandler) Unpublish(c *gin.Context) {
	doc, err := h.interceptor.Unpublish(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "unpublish document")
		return
	}
	common.RespondOK(c, doc)
}

// RelationCandidates lists the pickable targets of a relation field,
// restricted to the caller's tenant.
func (h *DocumentsHandler) RelationCandidates(c *gin.Context) {
	target, q, err := h.rewriter.RelationQuery(c, c.Param("type"), c.Param("field"))
	if err != nil {
		h.respondError(c, err, "resolve relation")
		return
	}

	docs, total, err := h.interceptor.FindMany(c.Request.Context(), target, q)
	if err != nil {
		h.respondError(c, err, "list relation candidates")
		return
	}
	common.RespondList(c, docs, common.NewPaginationMeta(q.Page, q.PageSize, total))
}

// respondError maps domain errors to HTTP. A record owned by another tenant
// answers exactly like a missing one, so probing ids leaks nothing.
func (h *DocumentsHandler) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, contentpkg.ErrNotFound), errors.Is(err, scope.ErrForbidden):
		common.RespondError(c, http.StatusNotFound, "document not found")
	case errors.Is(err, contentpkg.ErrUnknownType), errors.Is(err, scope.ErrUnknownRelation):
		common.RespondError(c, http.StatusNotFound, "unknown content type")
	case errors.Is(err, contentpkg.ErrInvalidFilter):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(action, zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, action+" failed")
	}
}
