package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/apiserver/middleware"
	"github.com/harambee/studentliving/internal/auth/jwt"
)

// RegisterRoutes mounts the housing API on r
func RegisterRoutes(r gin.IRouter, h *Handler, jwtService *jwt.Service) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.Use(middleware.LanguageMiddleware())

	auth := api.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.GET("/me", middleware.JWTAuthMiddleware(jwtService), h.Me)

	public := api.Group("", middleware.OptionalAuthMiddleware(jwtService))
	public.GET("/accommodations", h.ListAccommodations)
	public.GET("/accommodations/:id", h.GetAccommodation)

	protected := api.Group("", middleware.JWTAuthMiddleware(jwtService))
	{
		protected.POST("/users", h.CreateUser)
		protected.GET("/users", h.ListUsers)
		protected.GET("/users/:id", h.GetUser)
		protected.GET("/users/:id/accommodations", h.ListAdminAccommodations)

		protected.POST("/accommodations", h.CreateAccommodation)
		protected.PUT("/accommodations/:id", h.UpdateAccommodation)
		protected.DELETE("/accommodations/:id", h.DeleteAccommodation)
		protected.POST("/accommodations/:id/admins", h.AssignAdmin)
		protected.DELETE("/accommodations/:id/admins/:adminId", h.UnassignAdmin)

		protected.POST("/applications", h.SubmitApplication)
		protected.GET("/applications", h.ListApplications)
		protected.GET("/applications/:id", h.GetApplication)
		protected.POST("/applications/:id/approve", h.ApproveApplication)
		protected.POST("/applications/:id/reject", h.RejectApplication)

		protected.POST("/leases", h.CreateLease)
		protected.GET("/leases", h.ListLeases)
		protected.GET("/leases/:id", h.GetLease)
		protected.POST("/leases/:id/sign", h.SignLease)
		protected.POST("/leases/:id/terminate", h.TerminateLease)
		protected.POST("/leases/:id/invoices", h.CreateInvoice)

		protected.GET("/invoices", h.ListInvoices)
		protected.GET("/invoices/total-due", h.TotalDue)
		protected.GET("/invoices/:id", h.GetInvoice)
		protected.PUT("/invoices/:id/status", h.SetInvoiceStatus)
		protected.POST("/invoices/:id/reminder", h.SendInvoiceReminder)

		protected.POST("/maintenance", h.SubmitMaintenance)
		protected.GET("/maintenance", h.ListMaintenance)
		protected.GET("/maintenance/:id", h.GetMaintenance)
		protected.PUT("/maintenance/:id/status", h.SetMaintenanceStatus)

		protected.POST("/notifications/bulk", h.NotifyStudents)
		protected.GET("/notifications", h.Inbox)
		protected.POST("/notifications/:id/read", h.MarkRead)

		protected.GET("/documents/:kind/:id", h.DownloadDocument)
		protected.POST("/documents/:kind/:id/regenerate", h.RegenerateDocument)

		protected.GET("/dashboard", h.Dashboard)
	}
}
