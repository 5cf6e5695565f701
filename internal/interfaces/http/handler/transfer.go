package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// TransferHandler handles deposit, withdrawal and correction endpoints
type TransferHandler struct {
	BaseHandler
	transferService *ledgerapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *ledgerapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers the transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.Create)
		transfers.GET("/:id", h.Get)
	}
	rg.GET("/users/:id/transfers", h.ListByUser)
}

// Create records a deposit, withdrawal or manual correction
func (h *TransferHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transfer, err := h.transferService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// Get returns a single transfer
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	transfer, err := h.transferService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// ListByUser returns a page of transfers touching the user on either
// side
func (h *TransferHandler) ListByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.transferService.ListByUser(c.Request.Context(), userID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}
