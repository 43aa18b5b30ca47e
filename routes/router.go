// file: routes/router.go
package routes

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/alpnix/HackAtDavidson/controllers"
	"github.com/alpnix/HackAtDavidson/middlewares"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, log *slog.Logger, h *controllers.Handler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log), middlewares.CORS(cfg.CORSOrigins))
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// 本地存储时直接托管公开桶，简历桶只能经由接口下载
	if cfg.StorageDriver != "oss" {
		for _, bucket := range services.PublicBuckets {
			r.Static("/uploads/"+bucket, filepath.Join(cfg.UploadDir, bucket))
		}
	}

	auth := middlewares.JWTAuthMiddleware(h.Auth)
	president := middlewares.RoleAuthMiddleware(models.RolePresident)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(middlewares.Session(cfg.IsProduction()))
	{
		// --- 公开接口 ---
		apiV1.GET("/site", h.GetSite)
		apiV1.GET("/settings/public", h.PublicSettings)
		apiV1.POST("/registrations", h.SubmitRegistration)

		apiV1.GET("/blogs", h.ListBlogs)
		apiV1.GET("/blogs/:id", h.GetBlog)

		apiV1.GET("/forms/:id", h.GetPublicForm)
		apiV1.POST("/forms/:id/submissions", h.SubmitForm)

		projectRoutes := apiV1.Group("/projects")
		{
			projectRoutes.GET("/candidates", h.SearchCandidates)
			projectRoutes.GET("/busy", h.BusyMembers)
			projectRoutes.GET("/busy/stream", h.StreamBusyMembers)
			projectRoutes.POST("", h.SubmitProject)
		}

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", h.Login)
			authRoutes.POST("/forgot", h.ForgotPassword)
			authRoutes.POST("/verify-otp", h.VerifyOTP)
			authRoutes.POST("/reset", h.ResetPassword)
			authRoutes.POST("/logout", auth, h.Logout)
		}
		apiV1.GET("/me", auth, h.Me)

		// --- 员工接口 ---
		admin := apiV1.Group("/admin")
		admin.Use(auth)
		{
			regs := admin.Group("/registrations")
			{
				regs.GET("", h.ListRegistrations)
				regs.GET("/export", h.ExportRegistrations)
				regs.GET("/export/columns", h.ExportColumns)
				regs.GET("/stats", h.RegistrationStats)
				regs.POST("", h.AdminCreateRegistration)
				regs.GET("/:id", h.GetRegistration)
				regs.POST("/:id/check-in", h.CheckIn)
				regs.DELETE("/:id/check-in", h.UndoCheckIn)
				regs.DELETE("/:id", h.DeleteRegistration)
				regs.GET("/:id/resume", h.DownloadResume)
			}

			blogs := admin.Group("/blogs")
			{
				blogs.GET("", h.AdminListBlogs)
				blogs.POST("", h.CreateBlog)
				blogs.GET("/:id", h.AdminGetBlog)
				blogs.PUT("/:id", h.UpdateBlog)
				blogs.PUT("/:id/archive", h.ArchiveBlog)
				blogs.POST("/:id/cover", h.UploadBlogCover)
				blogs.DELETE("/:id", h.DeleteBlog)
			}

			forms := admin.Group("/forms")
			{
				forms.GET("", h.ListForms)
				forms.POST("", h.CreateForm)
				forms.GET("/:id", h.GetForm)
				forms.PUT("/:id", h.UpdateForm)
				forms.PUT("/:id/fields", h.ReplaceFormFields)
				forms.PUT("/:id/status", h.UpdateFormStatus)
				forms.DELETE("/:id", h.DeleteForm)
				forms.GET("/:id/submissions", h.ListSubmissions)
				forms.GET("/:id/export", h.ExportSubmissions)
				forms.GET("/:id/qrcode", h.FormQRCode)
				forms.POST("/:id/cover", h.UploadFormCover)
			}

			projects := admin.Group("/projects")
			{
				projects.GET("", h.ListProjects)
				projects.DELETE("/:id", h.DeleteProject)
				projects.DELETE("/:id/members/:registration_id", h.RemoveProjectMember)
			}

			settings := admin.Group("/settings")
			{
				settings.GET("", h.ListSettings)
				settings.PUT("/:name", h.UpdateSetting)
				settings.POST("", president, h.CreateSetting)
			}

			site := admin.Group("/site")
			{
				site.PUT("/hackathon", h.UpsertHackathon)
				site.POST("/sponsors", h.AddSponsor)
				site.DELETE("/sponsors/:id", h.DeleteSponsor())
				site.POST("/schedule", h.AddScheduleItem)
				site.DELETE("/schedule/:id", h.DeleteScheduleItem())
				site.POST("/faqs", h.AddFAQ)
				site.DELETE("/faqs/:id", h.DeleteFAQ())
			}

			staff := admin.Group("/staff")
			staff.Use(president)
			{
				staff.GET("", h.ListStaff)
				staff.POST("", h.CreateStaff)
				staff.PUT("/:id/role", h.UpdateStaffRole)
			}
		}
	}
	return r
}
