package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/middleware"
)

// RegisterRoutes mounts the /v1 API on router. Everything outside /auth and
// /health runs behind sessionAuth.
func (h *Handler) RegisterRoutes(router gin.IRouter, sessionAuth gin.HandlerFunc) {
	v1 := router.Group("/v1")
	v1.GET("/health", h.HealthCheck)

	public := v1.Group("/auth")
	{
		public.POST("/login", h.Login)
		public.POST("/register", h.Register)
		public.POST("/forgot-password", h.ForgotPassword)
		public.POST("/reset-password", h.ResetPassword)
	}

	private := v1.Group("")
	private.Use(sessionAuth)
	{
		private.POST("/auth/logout", h.Logout)
		private.GET("/dashboard", h.GetDashboard)

		private.GET("/titles/available", h.AvailableTitles)
		private.POST("/requests", h.CreateRequest)

		private.GET("/form", h.GetForm)
		private.PATCH("/form/draft", h.PatchDraft)
		private.POST("/form/steps/:index", h.GoToStep)
		private.POST("/form/save", h.SaveStep)
		private.POST("/form/next", h.NextStep)
		private.POST("/form/previous", h.PreviousStep)
		private.GET("/form/pdf", h.DownloadFormPDF)

		private.GET("/locations/countries", h.Countries)
		private.GET("/locations/countries/:id/provinces", h.Provinces)
		private.GET("/locations/provinces/:id/cities", h.Cities)

		reqs := private.Group("/requests/:requestId/requirements")
		reqs.GET("", h.ListRequirements)
		reqs.POST("/:instanceId/file", h.UploadRequirement)
		reqs.GET("/:instanceId/file", h.DownloadRequirement)

		reviewer := reqs.Group("", middleware.RequireReviewer(h.reviewerThreshold))
		reviewer.POST("/:instanceId/review", h.ReviewRequirement)
		reviewer.PUT("/:instanceId/comment", h.SetRequirementComment)
	}
}
