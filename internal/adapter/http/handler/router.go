package handler

import (
	"paynest/internal/adapter/http/middleware"
	redisStore "paynest/internal/adapter/storage/redis"
	"paynest/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	SettlementSvc  ports.SettlementService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	VerifierKey    string                     // empty = verification endpoint disabled
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

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc, deps.Logger)
	settlementHandler := NewSettlementHandler(deps.SettlementSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.ReportingSvc, deps.Logger)
	transactionHandler := NewTransactionHandler(deps.ReportingSvc, deps.Logger)

	// API v1 routes (all JWT-authenticated)
	v1 := r.Group("/api/v1", jwtAuth)
	{
		v1.POST("/exchange", rl("exchange"), ledgerHandler.Exchange)
		v1.POST("/transfers", rl("transfers"), ledgerHandler.Transfer)
		v1.POST("/transfers/:reference/proof", rl("proofs"), settlementHandler.SubmitProof)

		v1.GET("/wallets", rl("reports"), walletHandler.List)
		v1.GET("/wallets/:currency", rl("reports"), walletHandler.Get)
		v1.GET("/transactions", rl("reports"), transactionHandler.List)
		v1.GET("/transactions/:reference", rl("reports"), transactionHandler.Get)
		v1.GET("/dashboard/stats", rl("reports"), transactionHandler.Stats)
	}

	// Verification collaborator surface, authenticated by static key.
	internal := r.Group("/internal", middleware.VerifierAuth(deps.VerifierKey))
	{
		internal.POST("/settlements/:reference/verify", rl("verify"), settlementHandler.Verify)
	}

	return r
}
