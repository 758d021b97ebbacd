package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/service"
)

// Handlers exposes the core to the local UI process.
type Handlers struct {
	auth     *service.AuthService
	listings *service.ListingService
	payments *service.PaymentService
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(auth *service.AuthService, listings *service.ListingService, payments *service.PaymentService) *Handlers {
	return &Handlers{
		auth:     auth,
		listings: listings,
		payments: payments,
	}
}

// Register handles account creation.
func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		LightningAddress string `json:"lightning_address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identity, reg, err := h.auth.Register(c.Request.Context(), req.LightningAddress)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Registration failed"})
		return
	}

	// Key material is returned exactly once and never stored here.
	c.JSON(http.StatusOK, gin.H{
		"nostr_public_key":  identity.PublicKey,
		"nostr_private_key": reg.PrivateKey,
		"raw_seed":          reg.RawSeed,
	})
}

// Login handles nsec login and runs the challenge flow.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		PrivateKey string `json:"private_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identity, session, err := h.auth.Login(c.Request.Context(), req.PrivateKey)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDecode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed private key"})
		case errors.Is(err, core.ErrAuthenticationFailed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature rejected"})
		case errors.Is(err, core.ErrProfileRequired):
			c.JSON(http.StatusConflict, gin.H{"error": "Provision a profile before logging in"})
		default:
			c.JSON(statusFor(err), gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"public_key": identity.PublicKey,
		"token":      session.Token,
	})
}

// Logout clears the persisted session.
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Session revalidates the persisted session against the issuer.
func (h *Handlers) Session(c *gin.Context) {
	session, err := h.auth.Validate(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoSession), errors.Is(err, core.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session rejected"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": session.PublicKey})
}

// CreateListing submits a listing after solving the admission puzzle.
func (h *Handlers) CreateListing(c *gin.Context) {
	var draft core.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoSession):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		case errors.Is(err, core.ErrPowExhausted):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not solve admission puzzle"})
		default:
			c.JSON(statusFor(err), gin.H{"error": "Failed to create listing"})
		}
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Listings returns all listings.
func (h *Handlers) Listings(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch listings"})
		return
	}
	c.JSON(http.StatusOK, listings)
}

// Listing returns one listing by id.
func (h *Handlers) Listing(c *gin.Context) {
	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if core.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch listing"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Buy runs the settlement workflow for a listing.
func (h *Handlers) Buy(c *gin.Context) {
	var req struct {
		NWCString string `json:"nwc_string" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if core.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": "Failed to fetch listing"})
		return
	}

	attempt, err := h.payments.Purchase(c.Request.Context(), listing, req.NWCString)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoSession):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		case errors.Is(err, core.ErrMissingPaymentAddress):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Seller cannot receive payments"})
		case errors.Is(err, core.ErrMissingCredential):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wallet credential required"})
		case errors.Is(err, core.ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment failed"})
		case errors.Is(err, core.ErrSettlementConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Listing was bought by someone else"})
		case errors.Is(err, core.ErrConsistencyGap):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment settled but listing not updated; contact support"})
		default:
			c.JSON(statusFor(err), gin.H{"error": "Purchase failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"listing_id": attempt.ListingID,
		"status":     "settled",
	})
}

// statusFor maps adapter errors onto facade statuses.
func statusFor(err error) int {
	var se *core.ServerError
	if errors.As(err, &se) {
		return http.StatusBadGateway
	}
	if errors.Is(err, core.ErrNetwork) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
