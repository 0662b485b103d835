package router

import (
	"time"

	"clinipos/internal/config"
	"clinipos/internal/handler"
	"clinipos/internal/middleware"
	"clinipos/internal/repository"
	"clinipos/internal/service"
	"clinipos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	preclinicRepo := repository.NewPreclinicRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cashRepo := repository.NewCashRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	rcRepo := repository.NewRequestContextRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	auditSvc := service.NewAuditService(rcRepo)
	patientSvc := service.NewPatientService(patientRepo)
	preclinicSvc := service.NewPreclinicService(preclinicRepo, patientRepo)
	cashSvc := service.NewCashService(cashRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, catalogRepo, patientRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	paymentSvc := service.NewPaymentService(invoiceRepo, cashRepo, catalogRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	patientsH := handler.NewPatientHandler(patientSvc, preclinicSvc)
	preclinicH := handler.NewPreclinicHandler(preclinicSvc)
	catalogH := handler.NewCatalogHandler(catalogRepo, rdb)
	cashH := handler.NewCashHandler(cashSvc, auditSvc)
	invoicesH := handler.NewInvoiceHandler(invoiceSvc, paymentSvc, auditSvc, invoiceRepo, cfg.ClinicName)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — front-desk kiosks hit this without a session
	r.GET("/v1/catalog/price/:code", catalogH.PriceLookup)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireRole("cashier", "doctor", "admin", "super_admin")
	frontDesk := middleware.RequireRole("cashier", "admin", "super_admin")
	clinical := middleware.RequireRole("doctor", "admin", "super_admin")
	admins := middleware.RequireRole("admin", "super_admin")
	owners := middleware.RequireRole("super_admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog — read-only for all staff
		catalog := v1.Group("/catalog", staff)
		{
			catalog.GET("/services", catalogH.ListServices)
			catalog.GET("/products", catalogH.ListProducts)
			catalog.GET("/providers", catalogH.ListProviders)
		}

		// Patients
		v1.POST("/patients", frontDesk, patientsH.Create)
		v1.GET("/patients", staff, patientsH.List)
		v1.GET("/patients/:id", staff, patientsH.Get)
		v1.PUT("/patients/:id", frontDesk, patientsH.Update)
		v1.GET("/patients/:id/preclinic", staff, patientsH.ListPreclinic)
		v1.DELETE("/patients/:id", owners, patientsH.Delete)

		// Pre-clinic vitals
		v1.POST("/preclinic", clinical, preclinicH.Create)
		v1.GET("/preclinic/:id", staff, preclinicH.Get)
		v1.PATCH("/preclinic/:id", clinical, preclinicH.Update)

		// Cash registers and sessions
		cash := v1.Group("/cash", frontDesk)
		{
			cash.GET("/registers", cashH.ListRegisters)
			cash.POST("/sessions", cashH.OpenSession)
			cash.GET("/sessions", cashH.ListSessions)
			cash.GET("/sessions/:id", cashH.GetSession)
			cash.GET("/sessions/:id/summary", cashH.GetSummary)
			cash.POST("/sessions/:id/close", cashH.CloseSession)
			cash.POST("/movements", cashH.RecordMovement)
			cash.GET("/movements", cashH.ListMovements)
		}
		// Ledger deletes are owner-only
		v1.DELETE("/cash/movements/:id", owners, cashH.DeleteMovement)

		// Invoices and settlement
		invoices := v1.Group("/invoices", frontDesk)
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/:id", invoicesH.Get)
			invoices.POST("/:id/lines", invoicesH.AddLine)
			invoices.POST("/:id/post", invoicesH.Post)
			invoices.POST("/:id/payments", invoicesH.Pay)
			invoices.GET("/:id/print", invoicesH.Print)
		}
		// Voiding reverses a document, so it stays behind the admin roles
		v1.POST("/invoices/:id/void", admins, invoicesH.Void)
		// Transfer reconciliation is a back-office job
		v1.PATCH("/payments/:id/confirm-transfer", admins, invoicesH.ConfirmTransfer)

		// User administration
		users := v1.Group("/users", admins)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
