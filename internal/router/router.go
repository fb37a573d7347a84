package router

import (
	"context"
	"strings"
	"time"

	"github.com/cellkom/poscellkom-sub000/internal/config"
	"github.com/cellkom/poscellkom-sub000/internal/handler"
	"github.com/cellkom/poscellkom-sub000/internal/infra"
	"github.com/cellkom/poscellkom-sub000/internal/middleware"
	"github.com/cellkom/poscellkom-sub000/internal/realtime"
	"github.com/cellkom/poscellkom-sub000/internal/repository"
	"github.com/cellkom/poscellkom-sub000/internal/service"
	"github.com/cellkom/poscellkom-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide resources built in main.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Queue  service.ReceiptQueue
	MailCB *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine together
// with the receipt service, which the worker pool uses as its renderer.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, d Deps) (*gin.Engine, service.ReceiptService) {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.NewLimiter(1000, time.Minute)
	loginLimiter := middleware.NewLimiter(20, time.Minute)
	orderLimiter := middleware.NewLimiter(10, time.Minute)
	for _, l := range []*middleware.Limiter{apiLimiter, loginLimiter, orderLimiter} {
		go l.RunPurge(ctx, 5*time.Minute)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(splitOrigins(cfg.CORSOrigins)))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(apiLimiter))

	// ── Infrastructure ───────────────────────────────────────────────────────
	bus := realtime.NewBus(d.Redis)
	catalogCache := infra.NewCache(d.Redis, "cellkom:catalog:")
	storage := infra.NewStorage(cfg.UploadPath, cfg.PublicBaseURL)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	supplierRepo := repository.NewSupplierRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	saleRepo := repository.NewSaleRepository(d.DB)
	installmentRepo := repository.NewInstallmentRepository(d.DB)
	serviceRepo := repository.NewServiceOrderRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	contentRepo := repository.NewContentRepository(d.DB)
	receiptRepo := repository.NewReceiptRepository(d.DB)

	repos := service.CheckoutRepos{
		Sales:        saleRepo,
		Products:     productRepo,
		Customers:    customerRepo,
		Installments: installmentRepo,
		Movements:    movementRepo,
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, supplierRepo, movementRepo, bus, catalogCache)
	customerSvc := service.NewCustomerService(customerRepo, bus)
	supplierSvc := service.NewSupplierService(supplierRepo)
	saleSvc := service.NewSaleService(repos, bus, d.Queue, catalogCache)
	serviceSvc := service.NewServiceOrderService(serviceRepo, repos, bus, d.Queue, catalogCache)
	installmentSvc := service.NewInstallmentService(installmentRepo, bus)
	orderSvc := service.NewOrderService(orderRepo, repos, bus, d.Queue, catalogCache)
	contentSvc := service.NewContentService(contentRepo, bus, cfg.StoreName)
	storefrontSvc := service.NewStorefrontService(productRepo, catalogCache, time.Duration(cfg.CatalogCacheTTLMinutes)*time.Minute)
	receiptSvc := service.NewReceiptService(saleRepo, serviceRepo, receiptRepo, contentSvc, d.Queue)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	servicesH := handler.NewServicesHandler(serviceSvc)
	installmentsH := handler.NewInstallmentsHandler(installmentSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	contentH := handler.NewContentHandler(contentSvc)
	storeH := handler.NewStorefrontHandler(storefrontSvc, contentSvc, orderSvc)
	receiptsH := handler.NewReceiptsHandler(receiptSvc)
	realtimeH := handler.NewRealtimeHandler(bus)
	uploadsH := handler.NewUploadsHandler(storage)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.MailCB, worker.NewDLQ(d.Redis)))
	r.Static("/uploads", storage.Root())

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	store := r.Group("/v1/store")
	{
		store.GET("/products", storeH.Products)
		store.GET("/products/:code", storeH.ProductByCode)
		store.GET("/news", storeH.News)
		store.GET("/news/:slug", storeH.NewsBySlug)
		store.GET("/ads", storeH.Ads)
		store.GET("/settings", storeH.Settings)
		store.POST("/orders", orderLimiter.Middleware("too many orders, try again in a minute"), storeH.PlaceOrder)
	}

	// Protected routes
	const (
		admin      = middleware.RoleAdmin
		cashier    = middleware.RoleCashier
		technician = middleware.RoleTechnician
	)
	staff := middleware.RequireRole(admin, cashier, technician)
	front := middleware.RequireRole(admin, cashier)
	bench := middleware.RequireRole(admin, technician)
	adminOnly := middleware.RequireRole(admin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/realtime", staff, realtimeH.Stream)

		// Catalog: everyone reads, admin writes
		v1.GET("/products", staff, productsH.List)
		v1.GET("/products/low-stock", staff, productsH.LowStock)
		v1.GET("/products/:id", staff, productsH.Get)
		v1.GET("/products/:id/price-history", staff, productsH.PriceHistory)
		v1.GET("/stock-movements", adminOnly, productsH.Movements)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
			prods.PATCH("/:id/stock", productsH.AdjustStock)
		}

		customers := v1.Group("/customers", staff)
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", adminOnly, customersH.Deactivate)
		}

		suppliers := v1.Group("/suppliers", adminOnly)
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Deactivate)
		}

		sales := v1.Group("/sales", front)
		{
			sales.POST("/preview", salesH.Preview)
			sales.POST("", salesH.Checkout)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.DELETE("/:id", adminOnly, salesH.Void)
		}

		services := v1.Group("/services", staff)
		{
			services.POST("", servicesH.Create)
			services.GET("", servicesH.List)
			services.GET("/:id", servicesH.Get)
			services.PUT("/:id", bench, servicesH.Update)
			services.PATCH("/:id/status", bench, servicesH.UpdateStatus)
			services.POST("/:id/bill", servicesH.Bill)
			services.GET("/:id/transaction", servicesH.Transaction)
		}

		installments := v1.Group("/installments", front)
		{
			installments.GET("", installmentsH.List)
			installments.GET("/:id", installmentsH.Get)
			installments.POST("/:id/payments", installmentsH.AddPayment)
		}

		orders := v1.Group("/orders", front)
		{
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.POST("/:id/confirm", ordersH.Confirm)
			orders.POST("/:id/cancel", ordersH.Cancel)
		}

		receipts := v1.Group("/receipts", staff)
		{
			receipts.GET("/:source/:id", receiptsH.PDF)
			receipts.GET("/:source/:id/status", receiptsH.Status)
			receipts.POST("/:source/:id/resend", front, receiptsH.Resend)
		}

		v1.POST("/uploads", adminOnly, uploadsH.Upload)

		content := v1.Group("", adminOnly)
		{
			content.GET("/news", contentH.ListNews)
			content.POST("/news", contentH.CreateNews)
			content.GET("/news/:id", contentH.GetNews)
			content.PUT("/news/:id", contentH.UpdateNews)
			content.DELETE("/news/:id", contentH.DeleteNews)
			content.GET("/ads", contentH.ListAds)
			content.POST("/ads", contentH.CreateAd)
			content.PUT("/ads/:id", contentH.UpdateAd)
			content.DELETE("/ads/:id", contentH.DeleteAd)
			content.GET("/settings", storeH.Settings)
			content.PUT("/settings", contentH.UpdateSettings)
		}

		users := v1.Group("/users", adminOnly)
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

	return r, receiptSvc
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
