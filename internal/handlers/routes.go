package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/logger"
	"go-ticket-pos/internal/middleware"
	"go-ticket-pos/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// can is shorthand for the permission guard.
func can(slug, action string) gin.HandlerFunc {
	return middleware.RequirePermission(slug, action)
}

// NewRouter builds the gin engine with CORS and every route registered.
func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	RegisterRoutes(r, cfg)
	return r
}

// RegisterRoutes configures the handlers and mounts the API, the uploads and the admin panel.
func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	Configure(cfg)
	log := logger.MustGetLogger()

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.Static("/uploads", cfg.UploadDir)

	// Activation must stay reachable while the license lock is on.
	r.GET("/api/system/status", GetSystemStatus)
	r.POST("/api/system/activate", ActivateLicense)

	if cfg.AllowRegistration {
		r.POST("/register", Register)
		log.Warn("Registration route is OPEN. Disable this in production!")
	}

	r.POST("/api/auth/login", middleware.CheckLicense(cfg.LicenseEnforced), Login)

	api := r.Group("/api")
	api.Use(middleware.CheckLicense(cfg.LicenseEnforced))
	api.Use(middleware.AuthMiddleware())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/logout", Logout)
		authGroup.GET("/me", Me)
	}

	um := api.Group("/user-management")
	{
		um.GET("/users", can("users", models.ActionView), GetUsers)
		um.GET("/users/:id", can("users", models.ActionView), GetUser)
		um.POST("/users", can("users", models.ActionCreate), CreateUser)
		um.PUT("/users/:id", can("users", models.ActionUpdate), UpdateUser)
		um.DELETE("/users/:id", can("users", models.ActionDelete), DeleteUser)
		um.POST("/users/:id/restore", can("users", models.ActionUpdate), RestoreUser)
		um.PUT("/users/:id/password", can("users", models.ActionUpdate), ChangeUserPassword)

		// Reading roles is part of managing users: the user form picks one.
		um.GET("/roles", can("users", models.ActionView), GetRoles)
		um.GET("/roles/:id", can("users", models.ActionView), GetRole)
		um.POST("/roles", can("roles", models.ActionCreate), CreateRole)
		um.PUT("/roles/:id", can("roles", models.ActionUpdate), UpdateRole)
		um.DELETE("/roles/:id", can("roles", models.ActionDelete), DeleteRole)
		um.POST("/roles/:id/restore", can("roles", models.ActionUpdate), RestoreRole)
		um.GET("/roles/:id/permissions", can("roles", models.ActionView), GetRolePermissions)
		um.PUT("/roles/:id/permissions", can("roles", models.ActionUpdate), UpdateRolePermissions)
		um.GET("/roles/:id/routes", can("roles", models.ActionView), GetRoleRoutes)

		um.GET("/navigations", can("navigations", models.ActionView), GetNavigationTree)
		um.GET("/navigations/flat", can("navigations", models.ActionView), GetNavigationFlat)
		um.GET("/navigations/:id", can("navigations", models.ActionView), GetNavigation)
		um.POST("/navigations", can("navigations", models.ActionCreate), CreateNavigation)
		um.PUT("/navigations/:id", can("navigations", models.ActionUpdate), UpdateNavigation)
		um.DELETE("/navigations/:id", can("navigations", models.ActionDelete), DeleteNavigation)
	}

	cm := api.Group("/content-management")
	{
		cm.GET("/media", can("media-library", models.ActionView), GetMedia)
		cm.GET("/media/:id", can("media-library", models.ActionView), GetMediaItem)
		cm.POST("/media", can("media-library", models.ActionCreate), UploadMedia)
		cm.PUT("/media/:id", can("media-library", models.ActionUpdate), UpdateMedia)
		cm.DELETE("/media/:id", can("media-library", models.ActionDelete), DeleteMedia)
		cm.POST("/media/:id/restore", can("media-library", models.ActionUpdate), RestoreMedia)
		cm.DELETE("/media/:id/force", can("media-library", models.ActionDelete), ForceDeleteMedia)
	}

	rm := api.Group("/rate-management")
	{
		rm.GET("/rates", can("rates", models.ActionView), GetRates)
		rm.GET("/rates/:id", can("rates", models.ActionView), GetRate)
		rm.POST("/rates", can("rates", models.ActionCreate), CreateRate)
		rm.PUT("/rates/:id", can("rates", models.ActionUpdate), UpdateRate)
		rm.DELETE("/rates/:id", can("rates", models.ActionDelete), DeleteRate)
		rm.POST("/rates/:id/restore", can("rates", models.ActionUpdate), RestoreRate)

		rm.GET("/discounts", can("discounts", models.ActionView), GetDiscounts)
		rm.GET("/discounts/:id", can("discounts", models.ActionView), GetDiscount)
		rm.POST("/discounts", can("discounts", models.ActionCreate), CreateDiscount)
		rm.PUT("/discounts/:id", can("discounts", models.ActionUpdate), UpdateDiscount)
		rm.DELETE("/discounts/:id", can("discounts", models.ActionDelete), DeleteDiscount)
		rm.POST("/discounts/:id/restore", can("discounts", models.ActionUpdate), RestoreDiscount)
	}

	pm := api.Group("/promoter-management")
	{
		pm.GET("/promoters", can("promoters", models.ActionView), GetPromoters)
		pm.GET("/promoters/:id", can("promoters", models.ActionView), GetPromoter)
		pm.POST("/promoters", can("promoters", models.ActionCreate), CreatePromoter)
		pm.PUT("/promoters/:id", can("promoters", models.ActionUpdate), UpdatePromoter)
		pm.DELETE("/promoters/:id", can("promoters", models.ActionDelete), DeletePromoter)
		pm.POST("/promoters/:id/restore", can("promoters", models.ActionUpdate), RestorePromoter)

		pm.GET("/schedules", can("promoter-schedules", models.ActionView), GetSchedules)
		pm.GET("/schedules/today", can("promoter-schedules", models.ActionView), GetPromoterOfTheDay)
		pm.POST("/schedules", can("promoter-schedules", models.ActionCreate), AssignSchedule)
		pm.DELETE("/schedules/:id", can("promoter-schedules", models.ActionDelete), DeleteSchedule)
	}

	vm := api.Group("/vip-management")
	{
		vm.GET("/vips", can("vips", models.ActionView), GetVIPs)
		vm.GET("/vips/card/:card_number", can("vips", models.ActionView), CheckVIPCard)
		vm.GET("/vips/:id", can("vips", models.ActionView), GetVIP)
		vm.POST("/vips", can("vips", models.ActionCreate), CreateVIP)
		vm.PUT("/vips/:id", can("vips", models.ActionUpdate), UpdateVIP)
		vm.DELETE("/vips/:id", can("vips", models.ActionDelete), DeleteVIP)
		vm.POST("/vips/:id/restore", can("vips", models.ActionUpdate), RestoreVIP)
	}

	cashier := api.Group("/cashier")
	{
		cashier.POST("/sessions/open", can("pos", models.ActionCreate), OpenSession)
		cashier.GET("/sessions/current", can("pos", models.ActionView), CurrentSession)
		cashier.POST("/sessions/close", can("pos", models.ActionCreate), CloseSession)
		cashier.GET("/catalog", can("pos", models.ActionView), GetCatalog)
		cashier.GET("/vips/card/:card_number", can("pos", models.ActionView), CheckVIPCard)

		cashier.GET("/transactions", can("pos", models.ActionView), GetTransactions)
		cashier.POST("/transactions", can("pos", models.ActionCreate), CreateTransaction)
		cashier.GET("/transactions/:id", can("pos", models.ActionView), GetTransaction)
		cashier.POST("/transactions/:id/void", can("pos", models.ActionCreate), VoidTransaction)
		cashier.GET("/transactions/:id/receipt", can("pos", models.ActionView), GetReceipt)
		cashier.POST("/transactions/:id/print", can("pos", models.ActionView), PrintReceipt)
		cashier.POST("/display", can("pos", models.ActionView), ShowOnDisplay)

		cashier.GET("/tickets/:code", can("tickets", models.ActionView), GetTicket)
		cashier.GET("/tickets/:code/qr", can("tickets", models.ActionView), GetTicketQR)
		cashier.POST("/tickets/:code/redeem", can("tickets", models.ActionUpdate), RedeemTicket)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/dashboard", can("dashboard", models.ActionView), GetDashboard)
		reports.GET("/sales", can("sales-report", models.ActionView), GetSalesReport)
		reports.GET("/sales/export", can("sales-report", models.ActionView), ExportSalesReport)
		reports.GET("/closing", can("closing-report", models.ActionView), GetClosingReport)
		reports.GET("/closing/export", can("closing-report", models.ActionView), ExportClosingReport)
		reports.GET("/closing/:id", can("closing-report", models.ActionView), GetClosingSession)
		reports.GET("/audit-trails", can("audit-trail", models.ActionView), GetAuditTrails)
	}

	ss := api.Group("/system-settings")
	{
		ss.GET("/settings", can("settings", models.ActionView), GetSettings)
		ss.PUT("/settings", can("settings", models.ActionUpdate), UpdateSettings)

		tenants := ss.Group("/tenants", middleware.RequireRole())
		tenants.GET("", GetTenants)
		tenants.POST("", CreateTenant)
		tenants.PUT("/:id", UpdateTenant)
	}

	api.POST("/ask", middleware.RequireRole(models.RoleAdmin), AskAI)

	serveWeb(r, cfg.WebDir)
}

// serveWeb serves the built admin panel with an SPA fallback to index.html.
func serveWeb(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if dir == "" {
		return
	}
	if _, err := os.Stat(index); err != nil {
		return
	}

	r.Static("/assets", filepath.Join(dir, "assets"))
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		c.File(index)
	})
}
