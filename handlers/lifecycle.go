package handlers

import (
	"net/http"

	"payment-tracker-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetLifecycleInfo returns the active/inactive lifecycle shared by
// customers, payments and users.
func (h *Handler) GetLifecycleInfo(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, len(transitions))
	for i, t := range transitions {
		info[i] = gin.H{"from": t.From, "to": t.To, "event": t.Event}
	}
	c.JSON(http.StatusOK, gin.H{
		"lifecycle":   info,
		"applies_to":  []string{"customers", "payments", "users"},
		"description": "Soft delete deactivates a record; reactivate restores it",
	})
}
