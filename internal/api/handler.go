package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"tasleem/internal/service"
	"tasleem/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency can serve requests
type ReadinessCheck func(ctx context.Context) error

// Services groups the services served over HTTP
type Services struct {
	Auth        *service.AuthService
	Orders      *service.OrderService
	Withdrawals *service.WithdrawalService
	Catalog     *service.CatalogService
	Promos      *service.PromoService
	Images      *service.ImageService
	Journal     *service.JournalRecorder
}

// Handler contains HTTP handlers
type Handler struct {
	svc          Services
	cookieSecure bool
	checks       map[string]ReadinessCheck
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, cookieSecure bool, checks map[string]ReadinessCheck) *Handler {
	return &Handler{
		svc:          svc,
		cookieSecure: cookieSecure,
		checks:       checks,
		logger:       util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/", h.root)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.requireAuth(), h.logout)
		auth.GET("/me", h.requireAuth(), h.me)
		auth.PATCH("/profile", h.requireAuth(), h.updateProfile)
	}

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	authed := api.Group("", h.requireAuth())
	{
		authed.GET("/orders", h.listOrders)
		authed.POST("/orders", h.createOrder)
		authed.GET("/orders/:id", h.getOrder)

		authed.GET("/withdrawals", h.listWithdrawals)
		authed.POST("/withdrawals", h.createWithdrawal)

		authed.POST("/promo-codes/verify", h.verifyPromoCode)
	}

	admin := api.Group("", h.requireAuth(), requireAdmin())
	{
		admin.POST("/products", h.createProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.PATCH("/withdrawals/:id", h.updateWithdrawalStatus)

		admin.GET("/admin/users", h.listUsers)
		admin.GET("/admin/users/:id/journal", h.userJournal)

		admin.GET("/promo-codes", h.listPromoCodes)
		admin.POST("/promo-codes", h.createPromoCode)
		admin.DELETE("/promo-codes/:id", h.deletePromoCode)

		admin.POST("/upload", h.uploadImage)
		admin.DELETE("/upload/*publicId", h.deleteImage)
	}
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"app":    "Tasleem API",
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "بيانات غير صحيحة"})
		return false
	}
	return true
}

// paramID parses the :id path parameter, answering 400 when it is not a number
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "معرف غير صالح"})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
