package routes

import (
	"net/http"

	"ride-booking-api/handlers"
	"ride-booking-api/metrics"
	"ride-booking-api/middleware"
	"ride-booking-api/models"
	"ride-booking-api/ratelimit"

	"github.com/gin-gonic/gin"
)

// Options carries everything the router wires into the middleware chain.
type Options struct {
	Handler *handlers.Handler
	Limiter ratelimit.Limiter
}

// NewRouter builds the engine with global middleware, health and metrics.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		middleware.CORS(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Ride Booking API",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, opts)
	return r
}

func SetupRoutes(r *gin.Engine, opts Options) {
	h := opts.Handler
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	authenticated := middleware.AuthRequired(h.Tokens)
	verified := middleware.VerifiedRequired(h.Store)

	// ── Public auth routes ─────────────────────────────────────────
	public := r.Group("/api/auth")
	{
		public.POST("/register", h.Register)
		public.POST("/register-admin", h.RegisterAdmin)
		public.POST("/register-prime-admin", h.RegisterPrimeAdmin)
		public.POST("/login", h.Login)
		public.POST("/forgot-password", h.ForgotPassword)
		public.GET("/google", h.GoogleLogin)
		public.GET("/google/callback", h.GoogleCallback)

		// code-guessing endpoints are throttled per client
		public.POST("/verify-email", middleware.RateLimit(limiter, "verify-email"), h.VerifyEmail)
		public.POST("/resend-otp", middleware.RateLimit(limiter, "resend-otp"), h.ResendOTP)
		public.POST("/reset-password", middleware.RateLimit(limiter, "reset-password"), h.ResetPassword)
	}

	// ── Self-service routes ────────────────────────────────────────
	users := r.Group("/api/users")
	users.Use(authenticated, verified)
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.PUT("/change-password", h.ChangePassword)
		users.GET("/credits/history", h.MyCreditHistory)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(authenticated, verified, middleware.TierRequired(models.RoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.GET("/users/:id", h.AdminGetUser)
		admin.PUT("/users/:id", h.AdminUpdateUser)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
		admin.PUT("/users/:id/credits", h.AdminSetCredits)
		admin.GET("/users/:id/credits/history", h.AdminCreditHistory)
	}

	// ── Prime admin routes ─────────────────────────────────────────
	prime := r.Group("/api/admin")
	prime.Use(authenticated, verified, middleware.TierRequired(models.RolePrimeAdmin))
	{
		prime.PUT("/users/:id/role", h.AdminChangeRole)
		prime.GET("/admins", h.ListAdmins)
		prime.POST("/admins", h.CreateAdmin)
		prime.DELETE("/admins/:id", h.RemoveAdmin)
	}

	// ── Drop-off locations ─────────────────────────────────────────
	locations := r.Group("/api/locations")
	locations.Use(authenticated, verified, middleware.TierRequired(models.RoleAdmin))
	{
		locations.GET("/dropoff-locations", h.ListLocations)
		locations.POST("/dropoff-locations", h.CreateLocation)
		locations.PUT("/dropoff-locations/:id", h.UpdateLocation)
		locations.DELETE("/dropoff-locations/:id", h.DeleteLocation)
	}
}
