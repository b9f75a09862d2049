package tenants

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/api/handlers/common"
	"backend/internal/permission"
	"backend/internal/tenant"
)

// GrantsHandler exposes role grants to operators, read-only. Grants are
// seeded at boot; editing them by hand is not supported.
type GrantsHandler struct {
	service *permission.Service
	logger  *zap.Logger
}

func NewGrantsHandler(service *permission.Service, logger *zap.Logger) *GrantsHandler {
	return &GrantsHandler{service: service, logger: logger}
}

// List returns the grants of one role, defaulting to the editor role.
func (h *GrantsHandler) List(c *gin.Context) {
	role := c.DefaultQuery("role", tenant.RoleEditor)
	grants, err := h.service.ListGrants(c.Request.Context(), role)
	if err != nil {
		h.logger.Error("list grants", zap.Error(err))
		common.RespondError(c, http.StatusInternalServerError, "list grants failed")
		return
	}
	common.RespondOK(c, grants)
}

// Conditions returns the registered grant conditions.
func (h *GrantsHandler) Conditions(c *gin.Context) {
	all := h.service.Conditions().All()
	out := make([]gin.H, 0, len(all))
	for _, cond := range all {
		out = append(out, gin.H{
			"name":         cond.Name,
			"display_name": cond.DisplayName,
		})
	}
	common.RespondOK(c, out)
}
