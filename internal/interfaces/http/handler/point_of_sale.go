package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// PointOfSaleHandler handles point-of-sale catalog endpoints
type PointOfSaleHandler struct {
	BaseHandler
	posService *catalogapp.PointOfSaleService
}

// NewPointOfSaleHandler creates a new PointOfSaleHandler
func NewPointOfSaleHandler(posService *catalogapp.PointOfSaleService) *PointOfSaleHandler {
	return &PointOfSaleHandler{posService: posService}
}

// RegisterRoutes registers the point-of-sale routes
func (h *PointOfSaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pos := rg.Group("/points-of-sale")
	{
		pos.POST("", h.Create)
		pos.GET("", h.List)
		pos.GET("/purchasable", h.ListPurchasable)
		pos.GET("/:id", h.Get)
		pos.PUT("/:id", h.DirectUpdate)
		pos.POST("/:id/draft", h.CreateDraft)
		pos.POST("/:id/approve", h.Approve)
		pos.DELETE("/:id", h.Delete)
		pos.POST("/:id/restore", h.Restore)
	}
}

// Create creates a point-of-sale head with its first draft
func (h *PointOfSaleHandler) Create(c *gin.Context) {
	var req catalogapp.CreatePointOfSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pos, err := h.posService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pos)
}

// Get returns a point of sale with its current revision and pending
// draft
func (h *PointOfSaleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	pos, err := h.posService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pos)
}

// List returns all points of sale
func (h *PointOfSaleHandler) List(c *gin.Context) {
	h.list(c, h.posService.List)
}

// ListPurchasable returns points of sale eligible for purchase
func (h *PointOfSaleHandler) ListPurchasable(c *gin.Context) {
	h.list(c, h.posService.ListPurchaseEligible)
}

func (h *PointOfSaleHandler) list(c *gin.Context, fn func(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalogapp.PointOfSaleResponse], error)) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := fn(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// CreateDraft stages a new draft on the point of sale
func (h *PointOfSaleHandler) CreateDraft(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.PointOfSalePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pos, err := h.posService.CreateDraft(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pos)
}

// Approve promotes the pending draft to a new immutable revision,
// pinning the current revision of every member container
func (h *PointOfSaleHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	pos, err := h.posService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pos)
}

// DirectUpdate stages and approves a draft in one step
func (h *PointOfSaleHandler) DirectUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.PointOfSalePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pos, err := h.posService.DirectUpdate(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pos)
}

// Delete soft-deletes the point of sale
func (h *PointOfSaleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.posService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Restore brings a soft-deleted point of sale back
func (h *PointOfSaleHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.posService.Restore(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
