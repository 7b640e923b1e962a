package routes

import (
	"time"

	"gigbook/handlers"
	"gigbook/middleware"
	"gigbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	members   = []models.Role{models.RoleUser, models.RoleMusician, models.RoleVocalist}
	allRoles  = []models.Role{models.RoleUser, models.RoleMusician, models.RoleVocalist, models.RoleSuperAdmin}
	adminOnly = []models.Role{models.RoleSuperAdmin}
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterBookingRoutes sets up the booking and escrow endpoints. Every route
// needs a token; the escrow service still applies its own caller checks.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())

		bookingGroup.POST("", middleware.RequireRoles(members...), hb.CreateBooking)
		bookingGroup.POST("/release-funds/:paymentId", middleware.RequireRoles(allRoles...), hb.ReleaseFunds)
		bookingGroup.POST("/request-refund/:paymentId", middleware.RequireRoles(members...), hb.RequestRefund)
		bookingGroup.POST("/:id/approve-refund", middleware.RequireRoles(adminOnly...), hb.ApproveRefund)

		bookingGroup.PATCH("/:id/request-for-payment", middleware.RequireRoles(allRoles...), hb.RequestPayment)
		bookingGroup.PATCH("/:id/reject-refund", middleware.RequireRoles(adminOnly...), hb.RejectRefund)

		bookingGroup.GET("/payment/details", middleware.RequireRoles(allRoles...), hb.GetPaymentDetails)
		bookingGroup.GET("/get-my-task", middleware.RequireRoles(members...), hb.GetMyTasks)
		bookingGroup.GET("/pending/refund-requests", middleware.RequireRoles(adminOnly...), hb.GetPendingRefundRequests)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
}
