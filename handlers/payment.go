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

type PaymentRequest struct {
	CustomerID  *uint            `json:"customer_id"`
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,money"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
}

func (r PaymentRequest) input(partial bool) (store.PaymentInput, error) {
	if !partial {
		if r.CustomerID == nil {
			return store.PaymentInput{}, apperr.Validation("customer_id", "this field is required")
		}
		if r.Amount == nil {
			return store.PaymentInput{}, apperr.Validation("amount", "this field is required")
		}
	}
	return store.PaymentInput{
		CustomerID:  r.CustomerID,
		Amount:      r.Amount,
		Description: r.Description,
	}, nil
}

// ListPayments supports created_by, start_date, end_date, search and ordering
func (h *Handler) ListPayments(c *gin.Context) {
	params := filters.PaymentParamsFrom(c.Request.URL.Query())
	list, err := h.store.ListPayments(c.Request.Context(), middleware.CurrentUser(c), params, h.pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, list, serializePayment)
}

// PaymentStats totals the visible active payments under the list filters
func (h *Handler) PaymentStats(c *gin.Context) {
	params := filters.PaymentParamsFrom(c.Request.URL.Query())
	stats, err := h.store.Stats(c.Request.Context(), middleware.CurrentUser(c), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeStats(stats))
}

// CreatePayment records a payment dated now, created by the caller
func (h *Handler) CreatePayment(c *gin.Context) {
	var req PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input(false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	payment, err := h.store.CreatePayment(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializePayment(payment))
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	payment, err := h.store.GetPayment(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializePayment(payment))
}

// UpdatePayment handles PUT and PATCH; the payment date never changes
func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in, err := req.input(c.Request.Method == http.MethodPatch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	payment, err := h.store.UpdatePayment(c.Request.Context(), middleware.CurrentUser(c), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializePayment(payment))
}

func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if _, err := h.store.DeletePayment(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
