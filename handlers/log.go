package handlers

import (
	"payment-tracker-api/filters"
	"payment-tracker-api/middleware"

	"github.com/gin-gonic/gin"
)

// ListLogs returns the audit trail; employees see only their own entries
func (h *Handler) ListLogs(c *gin.Context) {
	params := filters.LogParamsFrom(c.Request.URL.Query())
	list, err := h.store.ListLogs(c.Request.Context(), middleware.CurrentUser(c), params, h.pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, list, serializeLog)
}
