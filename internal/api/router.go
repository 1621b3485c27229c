package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/legacyvault/admin-trust/docs"
	"github.com/legacyvault/admin-trust/internal/api/handler"
	"github.com/legacyvault/admin-trust/internal/api/middleware"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
	"github.com/legacyvault/admin-trust/internal/core/service"
)

// Dependencies carries the constructed services the router wires into
// routes. Construction (and lifecycles like the audit writer) belongs to
// main.
type Dependencies struct {
	DB           *mongo.Database
	Redis        *redis.Client
	TokenService ports.TokenService
	AuthService  ports.AuthService
	AuditService ports.AuditService
	Validation   ports.ValidationService
	Engine       *service.PermissionEngine
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("admintrust"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Engine)
	auditHandler := handler.NewAuditHandler(d.AuditService)
	verificationHandler := handler.NewVerificationHandler(d.Validation, d.AuditService)

	authn := middleware.Auth(d.TokenService, d.AuditService)
	requires := func(perm domain.Permission) echo.MiddlewareFunc {
		return middleware.RequirePermission(d.Engine, d.AuditService, perm)
	}

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authn)

	// --- Admin routes (all authenticated; permissions per route) ---
	admin := e.Group("/admin", authn)
	admin.GET("/pages", authHandler.Pages)
	admin.POST("/admins", authHandler.CreateAdmin, requires(domain.PermCreateAdmin))
	admin.GET("/audit", auditHandler.Query, requires(domain.PermViewAuditLogs))
	admin.GET("/audit/export", auditHandler.Export, requires(domain.PermExportAuditLogs))
	admin.POST("/verifications/validate", verificationHandler.Validate, requires(domain.PermViewVerifications))
	admin.POST("/verifications/:id/approve", verificationHandler.Approve, requires(domain.PermApproveVerification))
	admin.POST("/verifications/:id/reject", verificationHandler.Reject, requires(domain.PermRejectVerification))

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.DB, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
