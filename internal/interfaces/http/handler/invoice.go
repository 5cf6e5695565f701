package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settlementapp "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *settlementapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *settlementapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.PUT("/:id/state", h.UpdateState)
		invoices.GET("/:id/pdf", h.RenderPDF)
	}
}

// Create freezes a set of transaction rows into an invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req settlementapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Get returns an invoice with its entries and status history
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List returns invoices, optionally filtered by debtor
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	debtorID, err := parseUUIDQuery(c, "debtor_id")
	if err != nil {
		h.BadRequest(c, "invalid debtor_id format")
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), debtorID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Update edits document fields while the invoice is still mutable
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req settlementapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// UpdateState moves the invoice through its lifecycle. Deleting an
// invoice writes reversal transfers and releases its rows.
func (h *InvoiceHandler) UpdateState(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req settlementapp.UpdateInvoiceStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.UpdateInvoiceState(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RenderPDF renders the invoice document
func (h *InvoiceHandler) RenderPDF(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	pdf, err := h.invoiceService.RenderInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+id.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
