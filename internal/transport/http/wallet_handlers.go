package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
)

// WalletHandlers serves coins and the DEX order book.
type WalletHandlers struct {
	wallet   *wallet.Service
	demoMode bool
	log      *zerolog.Logger
}

// NewWalletHandlers creates a new wallet handlers instance.
// With demoMode set every request is served from the in-memory demo data.
func NewWalletHandlers(svc *wallet.Service, demoMode bool, logger *zerolog.Logger) *WalletHandlers {
	return &WalletHandlers{wallet: svc, demoMode: demoMode, log: logger}
}

func (h *WalletHandlers) demo(c *gin.Context) bool {
	if h.demoMode {
		return true
	}
	switch c.Query("demo") {
	case "1", "true":
		return true
	}
	return false
}

// Wallet returns the caller's coins and transactions.
// GET /api/wallet
func (h *WalletHandlers) Wallet(c *gin.Context) {
	if h.demo(c) {
		c.JSON(http.StatusOK, walletToResponse(h.wallet.DemoWallet()))
		return
	}
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	w, err := h.wallet.Wallet(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, walletToResponse(w))
}

// Book returns the order book.
// GET /api/dex
func (h *WalletHandlers) Book(c *gin.Context) {
	if h.demo(c) {
		c.JSON(http.StatusOK, bookToResponse(h.wallet.DemoBook()))
		return
	}
	c.JSON(http.StatusOK, bookToResponse(h.wallet.Book(c.Request.Context())))
}

// PlaceOrder adds a buy or sell order.
// POST /api/dex/orders
func (h *WalletHandlers) PlaceOrder(c *gin.Context) {
	var in wallet.OrderInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if h.demo(c) {
		order, err := h.wallet.PlaceDemoOrder(in)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, orderToResponse(order, 0))
		return
	}

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}
	order, err := h.wallet.PlaceOrder(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, orderToResponse(order, 0))
}
