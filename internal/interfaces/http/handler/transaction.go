package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// TransactionHandler handles purchase transaction endpoints
type TransactionHandler struct {
	BaseHandler
	transactionService *ledgerapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *ledgerapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// RegisterRoutes registers the transaction routes
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.Create)
		transactions.POST("/verify", h.Verify)
		transactions.GET("", h.List)
		transactions.GET("/:id", h.Get)
		transactions.PUT("/:id", h.Update)
		transactions.DELETE("/:id", h.Delete)
	}
}

// Verify runs the full validation pass without persisting anything
func (h *TransactionHandler) Verify(c *gin.Context) {
	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.transactionService.Verify(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create verifies and persists a purchase tree
func (h *TransactionHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transaction)
}

// Get returns a full purchase tree
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	transaction, err := h.transactionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transaction)
}

// List returns a page of the paying user's transactions, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fromID, err := uuid.Parse(c.Query("from_id"))
	if err != nil {
		h.BadRequest(c, "from_id query parameter is required")
		return
	}

	page, err := h.transactionService.List(c.Request.Context(), fromID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Update replaces a transaction with a corrected tree
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.transactionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transaction)
}

// Delete removes a transaction that has not been invoiced
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
