package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"LIBRIS-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the scan endpoints; main wires them behind
// RequireRole("admin").
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/audit/consistency", h.ScanConsistency)
	r.POST("/audit/recount", h.RecountAll)
}

func (h *Handler) ScanConsistency(c *gin.Context) {
	res, err := h.svc.ScanConsistency(c.Request.Context(), auth.TenantFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RecountAll(c *gin.Context) {
	res, err := h.svc.RecountAll(c.Request.Context(), auth.TenantFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
