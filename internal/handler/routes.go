package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/lifecycle"
	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Videos   *VideoHandler
	Watched  *WatchedVideoHandler
	Gallery  *GalleryHandler
	Library  *LibraryHandler
	Invoices *InvoiceHandler
	Schools  *SchoolHandler
	Programs *ProgramHandler
	Donation *DonationHandler
	Chat     *ChatHandler
	Files    *FileHandler
	Settings *SettingHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the API surface under the given prefix. Moderation
// and recycle-bin routes are gated by the lifecycle policy; everything else
// by explicit role lists.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, users *repository.UserRepository, policy lifecycle.Policy, logger *zap.Logger) {
	api := r.Group(prefix)

	// authentication
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/register", h.Users.Register)
		authGroup.POST("/logout", middleware.JWT(auth), h.Auth.Logout)
		authGroup.POST("/change-password", middleware.JWT(auth),
			middleware.Audit(users, logger, models.AuditActionPasswordChange, "auth"), h.Auth.ChangePassword)
	}

	// accounts
	userGroup := api.Group("/users", middleware.JWT(auth))
	{
		userGroup.GET("", middleware.RBAC(string(models.RoleAdmin)), h.Users.List)
		userGroup.GET("/me", h.Users.Me)
		userGroup.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Users.Get)
		userGroup.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"),
			middleware.Audit(users, logger, models.AuditActionUserUpdate, "user"), h.Users.Update)
		userGroup.DELETE("/:id", middleware.RBAC(string(models.RoleAdmin)), h.Users.Delete)
	}

	// course videos
	videoGroup := api.Group("/videos")
	{
		videoGroup.GET("", middleware.OptionalJWT(auth), h.Videos.List)
		videoGroup.GET("/bin", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpViewBin), h.Videos.ListBin)
		videoGroup.GET("/:id", h.Videos.Get)
		videoGroup.POST("", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpCreate), h.Videos.Create)
		videoGroup.PUT("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpUpdate), h.Videos.Update)
		videoGroup.POST("/:id/approve", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpApprove),
			middleware.Audit(users, logger, models.AuditActionApprove, "video"), h.Videos.Approve)
		videoGroup.POST("/:id/reject", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpReject),
			middleware.Audit(users, logger, models.AuditActionReject, "video"), h.Videos.Reject)
		videoGroup.DELETE("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpDelete),
			middleware.Audit(users, logger, models.AuditActionSoftDelete, "video"), h.Videos.Delete)
		videoGroup.POST("/bin/:id/restore", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpRestore),
			middleware.Audit(users, logger, models.AuditActionRestore, "video"), h.Videos.Restore)
		videoGroup.DELETE("/bin/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityVideo, lifecycle.OpPurge), h.Videos.Purge)

		// watch history
		videoGroup.GET("/watched", middleware.JWT(auth), h.Watched.Watched)
		videoGroup.POST("/:id/watched", middleware.JWT(auth), h.Watched.MarkWatched)
		videoGroup.GET("/:id/watchers", middleware.JWT(auth),
			middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), h.Watched.Watchers)
	}

	// gallery
	galleryGroup := api.Group("/gallery")
	{
		galleryGroup.GET("", middleware.WithResponseMeta(), h.Gallery.ListPublic)
		galleryGroup.GET("/manage", middleware.JWT(auth),
			middleware.RequireRoles(models.RoleAdmin, models.RoleSchool), h.Gallery.List)
		galleryGroup.GET("/bin", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpViewBin), h.Gallery.ListBin)
		galleryGroup.GET("/:id", h.Gallery.Get)
		galleryGroup.POST("", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpCreate), h.Gallery.Create)
		galleryGroup.PUT("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpUpdate), h.Gallery.Update)
		galleryGroup.POST("/:id/approve", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpApprove),
			middleware.Audit(users, logger, models.AuditActionApprove, "gallery_image"), h.Gallery.Approve)
		galleryGroup.POST("/:id/reject", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpReject),
			middleware.Audit(users, logger, models.AuditActionReject, "gallery_image"), h.Gallery.Reject)
		galleryGroup.DELETE("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpDelete),
			middleware.Audit(users, logger, models.AuditActionSoftDelete, "gallery_image"), h.Gallery.Delete)
		galleryGroup.POST("/bin/:id/restore", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpRestore),
			middleware.Audit(users, logger, models.AuditActionRestore, "gallery_image"), h.Gallery.Restore)
		galleryGroup.DELETE("/bin/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityGalleryImage, lifecycle.OpPurge), h.Gallery.Purge)
	}

	// library books
	bookGroup := api.Group("/library/books")
	{
		bookGroup.GET("", middleware.OptionalJWT(auth), h.Library.ListBooks)
		bookGroup.GET("/bin", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpViewBin), h.Library.ListBookBin)
		bookGroup.GET("/:id", h.Library.GetBook)
		bookGroup.POST("", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpCreate), h.Library.CreateBook)
		bookGroup.PUT("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpUpdate), h.Library.UpdateBook)
		bookGroup.POST("/:id/approve", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpApprove),
			middleware.Audit(users, logger, models.AuditActionApprove, "library_book"), h.Library.ApproveBook)
		bookGroup.POST("/:id/reject", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpReject),
			middleware.Audit(users, logger, models.AuditActionReject, "library_book"), h.Library.RejectBook)
		bookGroup.DELETE("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpDelete),
			middleware.Audit(users, logger, models.AuditActionSoftDelete, "library_book"), h.Library.DeleteBook)
		bookGroup.POST("/bin/:id/restore", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpRestore),
			middleware.Audit(users, logger, models.AuditActionRestore, "library_book"), h.Library.RestoreBook)
		bookGroup.DELETE("/bin/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryBook, lifecycle.OpPurge), h.Library.PurgeBook)
	}

	// library videos
	libVideoGroup := api.Group("/library/videos")
	{
		libVideoGroup.GET("", middleware.OptionalJWT(auth), h.Library.ListVideos)
		libVideoGroup.GET("/bin", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpViewBin), h.Library.ListVideoBin)
		libVideoGroup.GET("/:id", h.Library.GetVideo)
		libVideoGroup.POST("", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpCreate), h.Library.CreateVideo)
		libVideoGroup.PUT("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpUpdate), h.Library.UpdateVideo)
		libVideoGroup.DELETE("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpDelete),
			middleware.Audit(users, logger, models.AuditActionSoftDelete, "library_video"), h.Library.DeleteVideo)
		libVideoGroup.POST("/bin/:id/restore", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpRestore),
			middleware.Audit(users, logger, models.AuditActionRestore, "library_video"), h.Library.RestoreVideo)
		libVideoGroup.DELETE("/bin/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntityLibraryVideo, lifecycle.OpPurge), h.Library.PurgeVideo)
	}

	// invoices
	invoiceGroup := api.Group("/invoices", middleware.JWT(auth))
	{
		invoiceGroup.GET("", h.Invoices.List)
		invoiceGroup.GET("/:id", h.Invoices.Get)
		invoiceGroup.POST("",
			middleware.RequirePolicy(policy, lifecycle.EntityInvoice, lifecycle.OpCreate), h.Invoices.Create)
		invoiceGroup.POST("/:id/approve",
			middleware.RequirePolicy(policy, lifecycle.EntityInvoice, lifecycle.OpApprove),
			middleware.Audit(users, logger, models.AuditActionApprove, "invoice"), h.Invoices.Approve)
		invoiceGroup.POST("/:id/reject",
			middleware.RequirePolicy(policy, lifecycle.EntityInvoice, lifecycle.OpReject),
			middleware.Audit(users, logger, models.AuditActionReject, "invoice"), h.Invoices.Reject)
		invoiceGroup.DELETE("/:id",
			middleware.RequirePolicy(policy, lifecycle.EntityInvoice, lifecycle.OpDelete), h.Invoices.Delete)
		invoiceGroup.GET("/:id/download", h.Files.InvoiceDownload)
	}

	// signed asset downloads; the token carries the authorization
	api.GET("/files/:token", h.Files.Serve)

	// schools
	schoolGroup := api.Group("/schools")
	{
		schoolGroup.POST("", h.Schools.Register)
		schoolGroup.GET("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Schools.List)
		schoolGroup.GET("/:id", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Schools.Get)
		schoolGroup.PUT("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntitySchool, lifecycle.OpUpdate), h.Schools.Update)
		schoolGroup.POST("/:id/approve", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntitySchool, lifecycle.OpApprove),
			middleware.Audit(users, logger, models.AuditActionApprove, "school"), h.Schools.Approve)
		schoolGroup.POST("/:id/reject", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntitySchool, lifecycle.OpReject),
			middleware.Audit(users, logger, models.AuditActionReject, "school"), h.Schools.Reject)
		schoolGroup.DELETE("/:id", middleware.JWT(auth),
			middleware.RequirePolicy(policy, lifecycle.EntitySchool, lifecycle.OpDelete), h.Schools.Delete)
	}

	// programme requests
	programGroup := api.Group("/programs", middleware.JWT(auth))
	{
		programGroup.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleSchool), h.Programs.Submit)
		programGroup.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleSchool), h.Programs.List)
		programGroup.POST("/:id/approve", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(users, logger, models.AuditActionApprove, "program_request"), h.Programs.Approve)
		programGroup.POST("/:id/reject", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(users, logger, models.AuditActionReject, "program_request"), h.Programs.Reject)
	}

	// platform video settings
	settingGroup := api.Group("/settings/video")
	{
		settingGroup.GET("", h.Settings.Get)
		settingGroup.GET("/:id", h.Settings.GetByID)
		settingGroup.POST("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Settings.Create)
		settingGroup.PUT("/:id", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Settings.Update)
		settingGroup.DELETE("/:id", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Settings.Delete)
	}

	// donations
	donationGroup := api.Group("/donations")
	{
		donationGroup.POST("/checkout", middleware.OptionalJWT(auth), h.Donation.Checkout)
		donationGroup.POST("/webhook", h.Donation.Webhook)
		donationGroup.GET("/total", h.Donation.Total)
		donationGroup.GET("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Donation.List)
		donationGroup.GET("/export", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Donation.ExportCSV)
		donationGroup.GET("/:session", middleware.JWT(auth), h.Donation.Get)
	}

	// chat
	chatGroup := api.Group("/chat", middleware.JWT(auth))
	{
		chatGroup.POST("/messages", h.Chat.Send)
		chatGroup.GET("/conversations", h.Chat.Partners)
		chatGroup.GET("/conversations/:partnerId", h.Chat.Conversation)
		chatGroup.GET("/unread", h.Chat.Unread)
	}

	// observability
	api.GET("/metrics/snapshot", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin), h.Metrics.Snapshot)
}
