package handlers

import (
	"errors"
	"net/http"

	"payment-tracker-api/apperr"
	"payment-tracker-api/middleware"
	"payment-tracker-api/pagination"
	"payment-tracker-api/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the REST API on top of the store.
type Handler struct {
	store    *store.Store
	tokens   *middleware.TokenIssuer
	denylist middleware.Denylist
	logger   *zap.Logger
}

func New(st *store.Store, tokens *middleware.TokenIssuer, denylist middleware.Denylist, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, tokens: tokens, denylist: denylist, logger: logger}
}

// respondError writes {"error": ...} with the status for err. Server-side
// failures are logged and their details withheld.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.Status(err)

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body := gin.H{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(status, body)
		return
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		fields := []zap.Field{zap.String("request_id", middleware.RequestID(c)), zap.Error(err)}
		if errors.Is(err, apperr.ErrSystemAccountMissing) {
			h.logger.Error("fallback audit account missing; provision it or enable SEED_SYSTEM_ACCOUNT", fields...)
		} else {
			h.logger.Error("request failed", fields...)
		}
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body, turning binding failures into field errors.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(fe.Field(), "%s", describeFieldError(fe))
	}
	return apperr.Validation("", "malformed request body: %v", err)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return "ensure this field has at least " + fe.Param() + " characters"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "user_type":
		return "not a valid choice; use admin or employee"
	case "money":
		return "enter an amount with at most 2 decimal places and 10 digits"
	case "gte":
		return "must not be negative"
	default:
		return "invalid value"
	}
}

func (h *Handler) pathID(c *gin.Context) (uint, bool) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return 0, false
	}
	return id, true
}

func (h *Handler) pageRequest(c *gin.Context) pagination.Request {
	return h.store.Paginator().Parse(c.Request.URL.Query())
}

// respondPage serialises a page of models into the list envelope.
func respondPage[M, R any](c *gin.Context, list store.List[M], serialize func(*M) R) {
	out := make([]R, len(list.Items))
	for i := range list.Items {
		out[i] = serialize(&list.Items[i])
	}
	c.JSON(http.StatusOK, pagination.Build(pagination.AbsoluteURL(c.Request), list.Window, list.Count, out))
}

// Health reports liveness and database reachability.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Payment Tracker API",
		"version": "1.0.0",
	})
}
