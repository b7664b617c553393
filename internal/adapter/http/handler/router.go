package handler

import (
	"ngo-donation-ledger/internal/adapter/http/middleware"
	redisStore "ngo-donation-ledger/internal/adapter/storage/redis"
	"ngo-donation-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	RegistrySvc    ports.RegistryService
	DonationSvc    ports.DonationService
	VerifierSvc    ports.VerifierService
	WalletSvc      ports.WalletService
	TokenSvc       ports.TokenService
	NGORepo        ports.NGORepository
	DonationRepo   ports.DonationRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check pings PostgreSQL, Redis and NATS
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	ngoHandler := NewNGOHandler(deps.RegistrySvc)
	ngos := v1.Group("/ngos")
	{
		ngos.GET("/by-email", ngoHandler.GetByEmail)
		ngos.GET("/:identity", ngoHandler.Get)
		ngos.POST("", jwtAuth, rl("ngos"), ngoHandler.Register)
		ngos.POST("/:identity/verify", jwtAuth, rl("ngos"), ngoHandler.Verify)
		ngos.POST("/:identity/suspend", jwtAuth, rl("ngos"), ngoHandler.Suspend)
	}

	donationHandler := NewDonationHandler(deps.DonationSvc)
	donations := v1.Group("/donations")
	{
		donations.GET("/:id", donationHandler.Get)
		donations.POST("", jwtAuth, rl("donations"), donationHandler.Donate)
	}

	verifierHandler := NewVerifierHandler(deps.VerifierSvc)
	verifiers := v1.Group("/verifiers")
	{
		verifiers.GET("/:identity", verifierHandler.Get)
		verifiers.POST("", jwtAuth, verifierHandler.Add)
		verifiers.DELETE("/:identity", jwtAuth, verifierHandler.Remove)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.POST("/deposit", rl("wallets"), walletHandler.Deposit)
	}

	statsHandler := NewStatsHandler(deps.NGORepo, deps.DonationRepo)
	v1.GET("/stats", statsHandler.Get)

	return r
}
