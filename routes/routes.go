package routes

import (
	"net/http"
	"time"

	"emireminder/handlers"
	"emireminder/middleware"
	"emireminder/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options carries what the router needs beyond the handlers.
type Options struct {
	AllowedOrigins    []string
	MaxRequestsPerMin int
	Storage           utils.Pinger
	Redis             utils.Pinger
	Gatherer          prometheus.Gatherer
	Logger            *zap.Logger
}

// RegisterBillRoutes registers bill ledger endpoints.
func RegisterBillRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bills := api.Group("/bills")
	{
		bills.POST("", hb.Bills.CreateBillHandler)
		bills.GET("", hb.Bills.ListBillsHandler)
		bills.GET("/:id", hb.Bills.GetBillHandler)
		bills.PUT("/:id", hb.Bills.UpdateBillHandler)
		bills.PATCH("/:id/mark-paid", hb.Bills.MarkPaidHandler)
		bills.PATCH("/:id/mark-unpaid", hb.Bills.MarkUnpaidHandler)
		bills.DELETE("/:id", hb.Bills.DeleteBillHandler)
	}
}

// RegisterReminderRoutes registers reminder endpoints.
func RegisterReminderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	reminders := api.Group("/reminders")
	{
		reminders.GET("", hb.Reminders.ListRemindersHandler)
		reminders.POST("/test", hb.Reminders.TestReminderHandler)
		reminders.PUT("/:id/reschedule", hb.Reminders.RescheduleReminderHandler)
		reminders.DELETE("/:id", hb.Reminders.DeleteReminderHandler)
	}
}

// RegisterDashboardRoutes registers the read-only aggregates.
func RegisterDashboardRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	dash := api.Group("/dashboard")
	{
		dash.GET("/summary", hb.Dashboard.SummaryHandler)
		dash.GET("/upcoming", hb.Dashboard.UpcomingHandler)
		dash.GET("/overdue", hb.Dashboard.OverdueHandler)
		dash.GET("/monthly-summary", hb.Dashboard.MonthlySummaryHandler)
		dash.GET("/calendar", hb.Dashboard.CalendarHandler)
	}
}

// RegisterUserRoutes registers profile, preference and notification endpoints.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/user/profile", hb.Users.GetProfileHandler)
	api.PUT("/user/profile", hb.Users.UpdateProfileHandler)
	api.GET("/users/preferences", hb.Preferences.GetPreferencesHandler)
	api.PUT("/users/preferences", hb.Preferences.UpdatePreferencesHandler)

	notifications := api.Group("/notifications")
	{
		notifications.POST("/register-fcm", hb.Notifications.RegisterFCMHandler)
		notifications.GET("/history", hb.Notifications.HistoryHandler)
	}
}

// RegisterInsightRoutes registers the explanation endpoints.
func RegisterInsightRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	insights := api.Group("/insights")
	{
		insights.GET("/bills/:id", hb.Insights.ExplainBillHandler)
		insights.GET("/monthly", hb.Insights.MonthlyInsightsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for operators.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	{
		admin.Use(middleware.RequireRole(utils.RoleAdmin))
		admin.POST("/sweep", hb.Admin.SweepHandler)
	}
}

// RegisterHealthRoutes registers the health-check and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		if opts.Storage == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := utils.CheckHealth(c.Request.Context(), opts.Storage, opts.Redis)
		code := http.StatusOK
		label := "ok"
		if !status.Storage || (status.Redis != nil && !*status.Redis) {
			code = http.StatusServiceUnavailable
			label = "degraded"
		}
		c.JSON(code, gin.H{"status": label, "checks": status})
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoutes(r, opts)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))
	api.Use(middleware.JWTAuthMiddleware())

	RegisterBillRoutes(api, hb)
	RegisterReminderRoutes(api, hb)
	RegisterDashboardRoutes(api, hb)
	RegisterUserRoutes(api, hb)
	RegisterInsightRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
