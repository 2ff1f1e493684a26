package handlers

import (
	"net/http"

	"payment-tracker-api/filters"
	"payment-tracker-api/middleware"
	"payment-tracker-api/models"
	"payment-tracker-api/policy"
	"payment-tracker-api/store"

	"github.com/gin-gonic/gin"
)

// UserRequest accepts the writable user fields. is_staff and is_superuser
// are derived from user_type; is_active changes go through delete and
// reactivate.
type UserRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=1,max=150"`
	Password  *string `json:"password" binding:"omitempty,min=8,max=128"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	UserType  *string `json:"user_type" binding:"omitempty,user_type"`
}

func (r UserRequest) input() store.UserInput {
	in := store.UserInput{
		Username:  r.Username,
		Password:  r.Password,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
	if r.UserType != nil {
		t := models.UserType(*r.UserType)
		in.UserType = &t
	}
	return in
}

type RegisterRequest struct {
	UserRequest
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// Register creates a user (admin only)
func (h *Handler) Register(c *gin.Context) {
	if err := policy.AuthorizeKind(middleware.CurrentUser(c), policy.Create, policy.KindUser); err != nil {
		h.respondError(c, err)
		return
	}
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in := req.input()
	in.Username = &req.Username
	in.Password = &req.Password

	user, err := h.store.RegisterUser(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializeUser(user))
}

// ListUsers returns every user for admins and only the caller otherwise
func (h *Handler) ListUsers(c *gin.Context) {
	params := filters.UserParamsFrom(c.Request.URL.Query())
	list, err := h.store.ListUsers(c.Request.Context(), middleware.CurrentUser(c), params, h.pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, list, serializeUser)
}

// Me returns the caller's own record
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.Me(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}

// UpdateUser handles PUT and PATCH; both are partial for users since the
// password is write-only.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.store.UpdateUser(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.DeleteUser(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReactivateUser restores a deactivated account (admin only)
func (h *Handler) ReactivateUser(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	user, err := h.store.ReactivateUser(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}
