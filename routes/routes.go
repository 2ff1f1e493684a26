package routes

import (
	"payment-tracker-api/handlers"

	"github.com/gin-gonic/gin"
)

// Middleware is the per-route middleware the route table needs.
type Middleware struct {
	Auth       gin.HandlerFunc
	LoginLimit gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, mw Middleware) {
	r.GET("/health", h.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/token/", mw.LoginLimit, h.Login)
		public.POST("/token/refresh/", h.Refresh)

		// Lifecycle info (docs/Postman)
		public.GET("/lifecycle/", h.GetLifecycleInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	api := r.Group("/api")
	api.Use(mw.Auth)
	{
		api.POST("/token/logout/", h.Logout)

		// Payments
		api.GET("/payments/", h.ListPayments)
		api.POST("/payments/", h.CreatePayment)
		api.GET("/payments/stats/", h.PaymentStats)
		api.GET("/payments/:id/", h.GetPayment)
		api.PUT("/payments/:id/", h.UpdatePayment)
		api.PATCH("/payments/:id/", h.UpdatePayment)
		api.DELETE("/payments/:id/", h.DeletePayment)

		// Customers
		api.GET("/customers/", h.ListCustomers)
		api.POST("/customers/", h.CreateCustomer)
		api.GET("/customers/:id/", h.GetCustomer)
		api.PUT("/customers/:id/", h.UpdateCustomer)
		api.PATCH("/customers/:id/", h.UpdateCustomer)
		api.DELETE("/customers/:id/", h.DeleteCustomer)
		api.POST("/customers/:id/reactivate/", h.ReactivateCustomer)

		// Users
		api.POST("/users/register/", h.Register)
		api.GET("/users/", h.ListUsers)
		api.GET("/users/me/", h.Me)
		api.GET("/users/:id/", h.GetUser)
		api.PUT("/users/:id/", h.UpdateUser)
		api.PATCH("/users/:id/", h.UpdateUser)
		api.DELETE("/users/:id/", h.DeleteUser)
		api.POST("/users/:id/reactivate/", h.ReactivateUser)

		// Audit logs
		api.GET("/logs/", h.ListLogs)
	}
}
