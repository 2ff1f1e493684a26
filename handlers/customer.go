package handlers

import (
	"net/http"

	"payment-tracker-api/apperr"
	"payment-tracker-api/filters"
	"payment-tracker-api/middleware"
	"payment-tracker-api/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	Name       *string          `json:"name" binding:"omitempty,max=255"`
	Email      *string          `json:"email" binding:"omitempty,email,max=254"`
	Phone      *string          `json:"phone" binding:"omitempty,max=20"`
	Address    *string          `json:"address"`
	PackageFee *decimal.Decimal `json:"package_fee" binding:"omitempty,money"`
}

func (r CustomerRequest) input(partial bool) (store.CustomerInput, error) {
	if !partial {
		if r.Name == nil {
			return store.CustomerInput{}, apperr.Validation("name", "this field is required")
		}
		if r.Email == nil {
			return store.CustomerInput{}, apperr.Validation("email", "this field is required")
		}
	}
	return store.CustomerInput{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		PackageFee: r.PackageFee,
	}, nil
}

// ListCustomers supports search, ordering and is_active
func (h *Handler) ListCustomers(c *gin.Context) {
	params := filters.CustomerParamsFrom(c.Request.URL.Query())
	list, err := h.store.ListCustomers(c.Request.Context(), middleware.CurrentUser(c), params, h.pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, list, serializeCustomer)
}

// CreateCustomer records a customer owned by the caller
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input(false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customer, err := h.store.CreateCustomer(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializeCustomer(customer))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.store.GetCustomer(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeCustomer(customer))
}

// UpdateCustomer handles PUT (all required fields) and PATCH (partial)
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input(c.Request.Method == http.MethodPatch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customer, err := h.store.UpdateCustomer(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeCustomer(customer))
}

// DeleteCustomer soft-deletes; the record stays retrievable
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.DeleteCustomer(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ReactivateCustomer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.store.ReactivateCustomer(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeCustomer(customer))
}
