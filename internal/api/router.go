package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akunmarket/platform/claims-service/internal/handlers"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

// The upstream gateway terminates the session and forwards the verified
// identity in these headers. This service trusts them; it has no session
// store of its own.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// AuthRequired rejects requests without a forwarded identity.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Set("user_id", userID)
		c.Set("is_admin", strings.EqualFold(c.GetHeader(headerUserRole), "admin"))
		c.Next()
	}
}

// AdminRequired gates the review endpoints on the forwarded role.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func NewRouter(
	claimHandler *handlers.ClaimHandler,
	adminHandler *handlers.AdminHandler,
	eventsHandler *handlers.EventsHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "claims-service"})
	})

	api := r.Group("/api", AuthRequired())

	claims := api.Group("/claims")
	claims.GET("/eligible", claimHandler.ListEligible)
	claims.POST("", claimHandler.Submit)
	claims.GET("", claimHandler.ListMine)
	claims.GET("/stats", claimHandler.Stats)
	claims.GET("/events", eventsHandler.StreamUser)

	ev := api.Group("/evidence")
	ev.POST("/presign", claimHandler.PresignEvidence)
	ev.GET("/view", claimHandler.ViewEvidence)

	admin := api.Group("/admin", AdminRequired())
	admin.GET("/claims", adminHandler.List)
	admin.GET("/claims/stats", adminHandler.Stats)
	admin.GET("/claims/events", eventsHandler.StreamAdmin)
	admin.PATCH("/claims/:id/status", adminHandler.UpdateStatus)
	admin.POST("/claims/:id/refund", adminHandler.SettleRefund)
	admin.DELETE("/claims/:id", adminHandler.Delete)

	return r
}
