package routes

import (
	"m77ag-backend/config"
	"m77ag-backend/controllers"
	"m77ag-backend/logger"
	"m77ag-backend/models"
	"m77ag-backend/services"
	"m77ag-backend/store"
	"m77ag-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is wired to.
type Dependencies struct {
	Settings  *config.Settings
	DB        *gorm.DB
	Store     *store.Store
	Billing   *services.BillingService
	Reminders *services.ReminderService
	Quotes    *services.SprayQuoteService
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := deps.Settings.Origins()
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
	}))

	r.Use(config.PerformanceLogger(logger.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)

		profile := auth.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
			profile.PUT("/password", controllers.ChangePassword)
		}
	}

	invoiceController := &controllers.InvoiceController{Billing: deps.Billing, DB: deps.DB}
	billingController := &controllers.BillingController{Billing: deps.Billing, Reminders: deps.Reminders}
	sprayController := &controllers.SprayController{Quotes: deps.Quotes, Catalog: deps.Store, DB: deps.DB}
	reportController := controllers.ReportController{}
	adminOnly := utils.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Lease routes
		leases := api.Group("/leases")
		{
			leases.POST("", controllers.CreateLease)
			leases.GET("", controllers.GetLeases)
			leases.GET("/:id", controllers.GetLease)
			leases.PUT("/:id", controllers.UpdateLease)
			leases.DELETE("/:id", controllers.DeleteLease)
			leases.POST("/:id/invoices", invoiceController.GenerateLeaseInvoice)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.GET("", invoiceController.GetInvoices)
			invoices.GET("/:id", invoiceController.GetInvoice)
			invoices.GET("/:id/lateness", invoiceController.GetLateness)
			invoices.POST("/:id/payments", invoiceController.RecordPayment)
			invoices.POST("/:id/fail", invoiceController.MarkFailed)
			invoices.POST("/:id/retry", invoiceController.Retry)
			invoices.POST("/:id/refund", invoiceController.Refund)
			invoices.POST("/:id/cancel", invoiceController.Cancel)
		}

		// Batch jobs, normally run by the scheduler
		batch := api.Group("/billing", adminOnly)
		{
			batch.POST("/generate", billingController.GenerateInvoices)
			batch.POST("/late-fees", billingController.ApplyLateFees)
			batch.POST("/reminders", billingController.SendReminders)
		}

		api.GET("/reminder-templates", controllers.GetReminderTemplates)
		api.PUT("/reminder-templates/:type", adminOnly, controllers.UpdateReminderTemplate)
		api.GET("/reminder-logs", controllers.GetReminderLogs)

		api.GET("/dashboard", controllers.GetDashboardOverview)
		api.GET("/reports/rent", reportController.GetRentReport)

		// Spray catalog
		chemicals := api.Group("/chemicals")
		{
			chemicals.GET("", controllers.GetChemicals)
			chemicals.GET("/:id", controllers.GetChemical)
			chemicals.POST("", adminOnly, controllers.CreateChemical)
			chemicals.PUT("/:id", adminOnly, controllers.UpdateChemical)
			chemicals.DELETE("/:id", adminOnly, controllers.DeleteChemical)
		}

		api.GET("/discount-tiers", sprayController.GetDiscountTiers)
		api.PUT("/discount-tiers", adminOnly, sprayController.ReplaceDiscountTiers)

		programs := api.Group("/spray-programs")
		{
			programs.GET("", sprayController.GetPrograms)
			programs.POST("", adminOnly, sprayController.CreateProgram)
			programs.GET("/:id", sprayController.GetProgram)
			programs.DELETE("/:id", adminOnly, sprayController.DeleteProgram)
			programs.POST("/:id/quote", sprayController.QuoteProgram)
		}
		api.POST("/spray/quote", sprayController.QuoteAdhoc)
	}

	return r
}
