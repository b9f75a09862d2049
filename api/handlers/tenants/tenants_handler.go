package tenants

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/api/handlers/common"
	"backend/internal/scope"
	"backend/internal/tenant"
)

// TenantsHandler is the operator surface: tenant CRUD, editor assignments and
// backfill triggers. Routes mounting it are super-admin only.
type TenantsHandler struct {
	service  *tenant.Service
	assigner *scope.AutoAssigner
	logger   *zap.Logger
}

func NewTenantsHandler(service *tenant.Service, assigner *scope.AutoAssigner, logger *zap.Logger) *TenantsHandler {
	return &TenantsHandler{service: service, assigner: assigner, logger: logger}
}

// TenantRequest is the create payload.
type TenantRequest struct {
	ExternalID  string `json:"external_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

// Create registers a new tenant.
func (h *TenantsHandler) Create(c *gin.Context) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	t, err := h.service.CreateTenant(c.Request.Context(), tenant.CreateTenantParams{
		ExternalID:  req.ExternalID,
		Name:        req.Name,
		Slug:        req.Slug,
		Domain:      req.Domain,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err, "create tenant")
		return
	}
	common.RespondCreated(c, t)
}

// List returns all tenants.
func (h *TenantsHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 50)
	if page < 1 {
		page = 1
	}

	tenants, total, err := h.service.ListTenants(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.respondError(c, err, "list tenants")
		return
	}
	common.RespondList(c, tenants, common.NewPaginationMeta(page, pageSize, total))
}

// Get returns one tenant.
func (h *TenantsHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid tenant id")
		return
	}
	t, err := h.service.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "load tenant")
		return
	}
	common.RespondOK(c, t)
}

// UpdateTenantRequest carries optional updates. ExternalID and Slug are
// immutable.
type UpdateTenantRequest struct {
	Name        *string `json:"name"`
	Domain      *string `json:"domain"`
	Description *string `json:"description"`
}

// Update applies changes to one tenant.
func (h *TenantsHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid tenant id")
		return
	}
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	t, err := h.service.UpdateTenant(c.Request.Context(), id, tenant.UpdateTenantParams{
		Name:        req.Name,
		Domain:      req.Domain,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err, "update tenant")
		return
	}
	common.RespondOK(c, t)
}

// AssignmentRequest binds an editor email to a tenant.
type AssignmentRequest struct {
	Email    string `json:"email" binding:"required,email"`
	TenantID int64  `json:"tenant_id" binding:"required"`
}

// Assign creates an editor assignment.
func (h *TenantsHandler) Assign(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	a, err := h.service.AssignEditor(c.Request.Context(), req.Email, req.TenantID)
	if err != nil {
		h.respondError(c, err, "assign editor")
		return
	}
	common.RespondCreated(c, a)
}

// Reassign moves an editor to a different tenant.
func (h *TenantsHandler) Reassign(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	a, err := h.service.ReassignEditor(c.Request.Context(), req.Email, req.TenantID)
	if err != nil {
		h.respondError(c, err, "reassign editor")
		return
	}
	common.RespondOK(c, a)
}

// Unassign removes an editor assignment.
func (h *TenantsHandler) Unassign(c *gin.Context) {
	email := c.Param("email")
	if err := h.service.RemoveEditor(c.Request.Context(), email); err != nil {
		h.respondError(c, err, "remove assignment")
		return
	}
	common.RespondMessage(c, "assignment removed")
}

// Assignments lists every editor assignment.
func (h *TenantsHandler) Assignments(c *gin.Context) {
	assignments, err := h.service.ListAssignments(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "list assignments")
		return
	}
	common.RespondOK(c, assignments)
}

// BackfillRequest narrows a sweep to specific content types. Empty means all
// scoped types.
type BackfillRequest struct {
	ContentTypes []string `json:"content_types"`
}

// Backfill schedules a sweep connecting tenant-less records to this tenant.
func (h *TenantsHandler) Backfill(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req BackfillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}

	t, err := h.service.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "load tenant")
		return
	}

	if err := h.assigner.ScheduleSweep(c.Request.Context(), t.ExternalID, req.ContentTypes); err != nil {
		h.logger.Error("schedule backfill", zap.Int64("tenant_id", t.ID), zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "schedule backfill failed")
		return
	}
	c.JSON(http.StatusAccepted, common.APIResponse{Success: true, Message: "backfill scheduled"})
}

func (h *TenantsHandler) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, tenant.ErrSlugExists),
		errors.Is(err, tenant.ErrExternalIDExists),
		errors.Is(err, tenant.ErrAssignmentExists):
		common.RespondError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(action, zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, action+" failed")
	}
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
