package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// VatGroupHandler handles VAT group endpoints
type VatGroupHandler struct {
	BaseHandler
	vatGroupService *catalogapp.VatGroupService
}

// NewVatGroupHandler creates a new VatGroupHandler
func NewVatGroupHandler(vatGroupService *catalogapp.VatGroupService) *VatGroupHandler {
	return &VatGroupHandler{vatGroupService: vatGroupService}
}

// RegisterRoutes registers the VAT group routes
func (h *VatGroupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/vat-groups")
	{
		groups.POST("", h.Create)
		groups.GET("", h.List)
		groups.GET("/:id", h.Get)
		groups.PUT("/:id", h.Update)
		groups.DELETE("/:id", h.Delete)
	}
}

// Create creates a VAT group
func (h *VatGroupHandler) Create(c *gin.Context) {
	var req catalogapp.CreateVatGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.vatGroupService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, group)
}

// Get returns a VAT group
func (h *VatGroupHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	group, err := h.vatGroupService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// List returns all VAT groups
func (h *VatGroupHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.vatGroupService.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Update changes a VAT group; approved revision snapshots keep the
// percentage they were approved with
func (h *VatGroupHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateVatGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.vatGroupService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// Delete soft-deletes a VAT group
func (h *VatGroupHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.vatGroupService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
