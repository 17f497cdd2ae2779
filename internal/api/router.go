package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/intersect-health/fhir-api/internal/api/handler"
	"github.com/intersect-health/fhir-api/internal/api/middleware"
	"github.com/intersect-health/fhir-api/internal/core/domain"
	"github.com/intersect-health/fhir-api/internal/core/ports"
	"github.com/intersect-health/fhir-api/internal/core/service"
	"github.com/intersect-health/fhir-api/internal/core/token"
	"github.com/intersect-health/fhir-api/internal/infrastructure/config"
	mongodb "github.com/intersect-health/fhir-api/internal/infrastructure/db/mongo"
	redisdb "github.com/intersect-health/fhir-api/internal/infrastructure/db/redis"
)

const apiPrefix = "/api/v1"

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger, audit ports.AuditTrail) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	e.Use(echoprometheus.NewMiddleware("fhir_api"))
	if cfg.RateLimitRPS > 0 {
		e.Use(echomiddleware.RateLimiter(
			echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS)),
		))
	}

	// --- Dependencies ---
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userRepo := mongodb.NewUserRepository(db)
	revoker := redisdb.NewRevocationList(rdb)
	authService := service.NewAuthService(userRepo, issuer, revoker, audit)
	authHandler := handler.NewAuthHandler(authService)

	resourceRepo := mongodb.NewResourceRepository(db)
	resourceService := service.NewResourceService(resourceRepo, audit)
	resourceHandler := handler.NewResourceHandler(resourceService)

	authenticate := middleware.Authenticate(authService)

	// --- Auth routes ---
	auth := e.Group(apiPrefix + "/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authenticate)
	auth.POST("/logout", authHandler.Logout, authenticate)
	auth.POST("/users/:id/deactivate", authHandler.Deactivate,
		authenticate, middleware.RequireRole(domain.RoleAdmin))

	// --- Resource routes: five endpoints per registered type ---
	resources := e.Group(apiPrefix, authenticate)
	if obs, ok := domain.LookupResourceType("Observation"); ok {
		resources.GET("/Observation/latest/:patient_id", resourceHandler.Latest(obs))
	}
	for _, rt := range domain.ResourceTypes {
		base := "/" + rt.Name
		resources.POST(base, resourceHandler.Create(rt))
		resources.GET(base, resourceHandler.Search(rt))
		resources.GET(base+"/:id", resourceHandler.Get(rt))
		resources.PUT(base+"/:id", resourceHandler.Update(rt))
		resources.DELETE(base+"/:id", resourceHandler.Delete(rt))
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
