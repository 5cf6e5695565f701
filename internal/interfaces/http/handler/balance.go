package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	ledgerapp "github.com/bartab/backend/internal/application/ledger"
)

// BalanceHandler handles derived balance endpoints
type BalanceHandler struct {
	BaseHandler
	balanceService *ledgerapp.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balanceService *ledgerapp.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// RegisterRoutes registers the balance routes
func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:id/balance", h.Get)
}

// Get returns the user's net position, at the optional "at" instant or
// now
func (h *BalanceHandler) Get(c *gin.Context) {
	userID, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	asOf, err := parseTimeQuery(c, "at", time.Time{})
	if err != nil {
		h.BadRequest(c, "at must be an RFC 3339 timestamp")
		return
	}

	balance, err := h.balanceService.Balance(c.Request.Context(), userID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
