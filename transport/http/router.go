package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nostrmarket/agora/ports"
	"github.com/nostrmarket/agora/service"
)

// SetupRouter wires the facade routes.
func SetupRouter(auth *service.AuthService, listings *service.ListingService, payments *service.PaymentService, store ports.SessionStore, metricsHandler http.Handler) *gin.Engine {
	router := gin.Default()
	handlers := NewHandlers(auth, listings, payments)

	router.POST("/register", handlers.Register)
	router.POST("/login", handlers.Login)
	router.POST("/logout", handlers.Logout)
	router.GET("/session", handlers.Session)

	router.GET("/listings", handlers.Listings)
	router.GET("/listings/:id", handlers.Listing)

	authed := router.Group("/", RequireSession(store))
	authed.POST("/listings", handlers.CreateListing)
	authed.POST("/listings/:id/buy", handlers.Buy)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return router
}
