package handler

import (
	"github.com/gin-gonic/gin"

	settlementapp "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// VoucherGroupHandler handles voucher group endpoints
type VoucherGroupHandler struct {
	BaseHandler
	voucherService *settlementapp.VoucherGroupService
}

// NewVoucherGroupHandler creates a new VoucherGroupHandler
func NewVoucherGroupHandler(voucherService *settlementapp.VoucherGroupService) *VoucherGroupHandler {
	return &VoucherGroupHandler{voucherService: voucherService}
}

// RegisterRoutes registers the voucher group routes
func (h *VoucherGroupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/voucher-groups")
	{
		groups.POST("", h.Create)
		groups.GET("", h.List)
		groups.GET("/:id", h.Get)
		groups.PUT("/:id", h.Update)
	}
}

// Create issues a group of pre-funded voucher accounts. The response
// is the only place the plaintext redemption codes appear.
func (h *VoucherGroupHandler) Create(c *gin.Context) {
	var req settlementapp.CreateVoucherGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.voucherService.CreateVoucherGroup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, group)
}

// Get returns a voucher group with its members
func (h *VoucherGroupHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	group, err := h.voucherService.GetVoucherGroup(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// List returns all voucher groups
func (h *VoucherGroupHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.voucherService.ListVoucherGroups(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Update adjusts the group window, per-member balance and member count
func (h *VoucherGroupHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var req settlementapp.UpdateVoucherGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	group, err := h.voucherService.UpdateVoucherGroup(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}
