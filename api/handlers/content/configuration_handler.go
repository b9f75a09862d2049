package content

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/api/handlers/common"
	"backend/internal/auth"
	contentpkg "backend/internal/content"
	"backend/internal/scope"
)

// ConfigurationHandler serves the view configurations the admin UI renders
// from. Layouts are scrubbed per caller role before leaving the server.
type ConfigurationHandler struct {
	registry *contentpkg.Registry
	scrubber *scope.Scrubber
}

func NewConfigurationHandler(registry *contentpkg.Registry, scrubber *scope.Scrubber) *ConfigurationHandler {
	return &ConfigurationHandler{registry: registry, scrubber: scrubber}
}

// Types lists every declared content type.
func (h *ConfigurationHandler) Types(c *gin.Context) {
	common.RespondOK(c, h.registry.All())
}

// Configuration returns the view configuration for one type.
func (h *ConfigurationHandler) Configuration(c *gin.Context) {
	uid := c.Param("type")
	def, ok := h.registry.Get(uid)
	if !ok {
		common.RespondError(c, http.StatusNotFound, "unknown content type")
		return
	}

	cfg := contentpkg.DefaultLayout(def)
	if id, ok := auth.GetIdentity(c); ok {
		h.scrubber.Scrub(id, cfg)
	}
	common.RespondOK(c, cfg)
}
