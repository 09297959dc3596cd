// Package server assembles the service layer and the gin router. cmd/api and
// the end-to-end tests build the application through it.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pharmaledger/internal/config"
	_ "pharmaledger/internal/docs" // swagger spec
	"pharmaledger/internal/handlers"
	"pharmaledger/internal/metrics"
	"pharmaledger/internal/middleware"
	"pharmaledger/internal/services"
	"pharmaledger/internal/validator"
)

// Services is the wired service layer.
type Services struct {
	Users        services.UserServicer
	Audit        services.AuditServicer
	Shifts       services.ShiftServicer
	Sales        services.SaleServicer
	Expenses     services.ExpenseServicer
	ExpenseHeads services.ExpenseHeadServicer
	Vendors      services.VendorServicer
	VendorTx     services.VendorTransactionServicer
	Personal     services.PersonalServicer
	Reports      services.ReportServicer
}

// NewServices wires every service onto db.
func NewServices(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) *Services {
	shifts := services.NewShiftService(db, m, cfg.OpeningCash, cfg.Currency)
	vendors := services.NewVendorService(db)
	return &Services{
		Users:        services.NewUserService(db),
		Audit:        services.NewAuditService(db),
		Shifts:       shifts,
		Sales:        services.NewSaleService(db, m),
		Expenses:     services.NewExpenseService(db, m),
		ExpenseHeads: services.NewExpenseHeadService(db),
		Vendors:      vendors,
		VendorTx:     services.NewVendorTransactionService(db, m),
		Personal:     services.NewPersonalService(db, m),
		Reports:      services.NewReportService(db, vendors, shifts),
	}
}

// NewRouter builds the HTTP router. m may be nil, in which case neither the
// metrics middleware nor /metrics is installed.
func NewRouter(cfg *config.Config, svc *Services, m *metrics.Metrics) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit, cfg.JWTSecret, cfg.JWTExpirationDur)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Audit)
	shiftHandler := handlers.NewShiftHandler(svc.Shifts, svc.Audit, cfg.Currency)
	saleHandler := handlers.NewSaleHandler(svc.Sales, svc.Audit)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Audit)
	headHandler := handlers.NewExpenseHeadHandler(svc.ExpenseHeads, svc.Audit)
	vendorHandler := handlers.NewVendorHandler(svc.Vendors, svc.Audit)
	vendorTxHandler := handlers.NewVendorTransactionHandler(svc.VendorTx, svc.Audit)
	personalHandler := handlers.NewPersonalHandler(svc.Personal, svc.Audit)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	auditHandler := handlers.NewAuditHandler(svc.Audit)

	// Binding tags such as shift_type and money_gt0 live on gin's shared engine.
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	router.Use(middleware.ErrorHandler())
	if m != nil {
		router.Use(middleware.Metrics(m))
		router.GET("/metrics", middleware.APIKeyMiddleware(cfg.MetricsAPIKey),
			gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, svc.Users))

	protected.GET("/profile", authHandler.GetProfile)

	users := protected.Group("/users")
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)
	users.PUT("/:id", userHandler.UpdateUser)
	users.POST("/:id/deactivate", userHandler.DeactivateUser)
	users.POST("/:id/reactivate", userHandler.ReactivateUser)

	shifts := protected.Group("/shifts")
	shifts.POST("/open", shiftHandler.OpenShift)
	shifts.GET("/open", shiftHandler.ListOpenShifts)
	shifts.GET("/open/:type", shiftHandler.GetOpenShift)
	shifts.GET("/:id", shiftHandler.GetShift)
	shifts.POST("/:id/close", shiftHandler.CloseShift)
	shifts.GET("/:id/summary", shiftHandler.GetSummary)
	shifts.GET("/:id/expected-cash", shiftHandler.GetExpectedCash)

	sales := protected.Group("/sales")
	sales.POST("", saleHandler.AddSale)
	sales.GET("", saleHandler.ListSales)
	sales.PUT("/:id", saleHandler.UpdateSale)
	sales.DELETE("/:id", saleHandler.DeleteSale)

	heads := protected.Group("/expense-heads")
	heads.POST("", headHandler.CreateExpenseHead)
	heads.GET("", headHandler.ListExpenseHeads)
	heads.PUT("/:id", headHandler.UpdateExpenseHead)
	heads.POST("/:id/active", headHandler.SetExpenseHeadActive)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.AddExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	vendors := protected.Group("/vendors")
	vendors.POST("", vendorHandler.CreateVendor)
	vendors.GET("", vendorHandler.ListVendors)
	vendors.GET("/:id", vendorHandler.GetVendor)
	vendors.PUT("/:id", vendorHandler.UpdateVendor)
	vendors.POST("/:id/active", vendorHandler.SetVendorActive)
	vendors.GET("/:id/balance", vendorHandler.GetBalance)
	vendors.GET("/:id/ledger", vendorHandler.GetLedger)
	vendors.POST("/:id/purchases", vendorTxHandler.AddPurchase)
	vendors.GET("/:id/purchases", vendorTxHandler.ListPurchases)
	vendors.POST("/:id/payments", vendorTxHandler.AddPayment)
	vendors.GET("/:id/payments", vendorTxHandler.ListPayments)
	vendors.POST("/:id/returns", vendorTxHandler.AddReturn)
	vendors.GET("/:id/returns", vendorTxHandler.ListReturns)

	protected.PUT("/vendor-purchases/:id", vendorTxHandler.UpdatePurchase)
	protected.DELETE("/vendor-purchases/:id", vendorTxHandler.DeletePurchase)
	protected.PUT("/vendor-payments/:id", vendorTxHandler.UpdatePayment)
	protected.DELETE("/vendor-payments/:id", vendorTxHandler.DeletePayment)
	protected.PUT("/vendor-returns/:id", vendorTxHandler.UpdateReturn)
	protected.DELETE("/vendor-returns/:id", vendorTxHandler.DeleteReturn)

	personal := protected.Group("/personal")
	personal.POST("", personalHandler.AddPersonal)
	personal.GET("", personalHandler.ListPersonal)
	personal.GET("/balance", personalHandler.GetBalance)
	personal.PUT("/:id", personalHandler.UpdatePersonal)
	personal.DELETE("/:id", personalHandler.DeletePersonal)

	reports := protected.Group("/reports")
	reports.GET("/daily", reportHandler.DailySummary)
	reports.GET("/sales", reportHandler.SalesReport)
	reports.GET("/expenses", reportHandler.ExpensesReport)
	reports.GET("/vendors/:id/ledger", reportHandler.VendorLedgerReport)
	reports.GET("/personal", reportHandler.PersonalLedgerReport)
	reports.GET("/shifts", reportHandler.ShiftReport)
	reports.GET("/profit-loss", reportHandler.ProfitAndLoss)

	protected.GET("/audit-logs", auditHandler.ListAuditLogs)

	return router
}
