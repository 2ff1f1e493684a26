package handlers

import (
	"net/http"

	"payment-tracker-api/apperr"
	"payment-tracker-api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for an access and refresh token pair
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.store.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	pair, err := h.tokens.GeneratePair(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    serializeUser(user),
	})
}

// Refresh issues a new access token from a valid refresh token
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	claims, err := h.tokens.Parse(req.Refresh, middleware.RefreshToken)
	if err != nil {
		h.respondError(c, apperr.ErrAuthenticationRequired)
		return
	}
	revoked, err := h.denylist.Revoked(c.Request.Context(), claims.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if revoked {
		h.respondError(c, apperr.ErrAuthenticationRequired)
		return
	}
	user, err := h.store.ActiveUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	access, err := h.tokens.GenerateToken(user, middleware.AccessToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout revokes the presented access token, and the refresh token when
// one is supplied, then records user_logout.
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	principal := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	claims := middleware.CurrentClaims(c)
	if err := h.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Refresh != "" {
		refresh, err := h.tokens.Parse(req.Refresh, middleware.RefreshToken)
		if err == nil && refresh.UserID == principal.ID {
			if err := h.denylist.Revoke(ctx, refresh.ID, refresh.ExpiresAt.Time); err != nil {
				h.respondError(c, err)
				return
			}
		}
	}

	if err := h.store.Logout(ctx, principal); err != nil {
		h.respondError(c, err)
		return
	}
	h.logger.Info("user logged out", zap.Uint("user_id", principal.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
