package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// ContainerHandler handles container catalog endpoints
type ContainerHandler struct {
	BaseHandler
	containerService *catalogapp.ContainerService
}

// NewContainerHandler creates a new ContainerHandler
func NewContainerHandler(containerService *catalogapp.ContainerService) *ContainerHandler {
	return &ContainerHandler{containerService: containerService}
}

// RegisterRoutes registers the container routes
func (h *ContainerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	containers := rg.Group("/containers")
	{
		containers.POST("", h.Create)
		containers.GET("", h.List)
		containers.GET("/purchasable", h.ListPurchasable)
		containers.GET("/:id", h.Get)
		containers.PUT("/:id", h.DirectUpdate)
		containers.POST("/:id/draft", h.CreateDraft)
		containers.POST("/:id/approve", h.Approve)
		containers.DELETE("/:id", h.Delete)
		containers.POST("/:id/restore", h.Restore)
	}
}

// Create creates a container head with its first draft
func (h *ContainerHandler) Create(c *gin.Context) {
	var req catalogapp.CreateContainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	container, err := h.containerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, container)
}

// Get returns a container with its current revision and pending draft
func (h *ContainerHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	container, err := h.containerService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, container)
}

// List returns all containers
func (h *ContainerHandler) List(c *gin.Context) {
	h.list(c, h.containerService.List)
}

// ListPurchasable returns containers eligible for purchase
func (h *ContainerHandler) ListPurchasable(c *gin.Context) {
	h.list(c, h.containerService.ListPurchaseEligible)
}

func (h *ContainerHandler) list(c *gin.Context, fn func(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalogapp.ContainerResponse], error)) {
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

// CreateDraft stages a new draft on the container
func (h *ContainerHandler) CreateDraft(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.ContainerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	container, err := h.containerService.CreateDraft(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, container)
}

// Approve promotes the pending draft to a new immutable revision,
// pinning the current revision of every member product
func (h *ContainerHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	container, err := h.containerService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, container)
}

// DirectUpdate stages and approves a draft in one step
func (h *ContainerHandler) DirectUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.ContainerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	container, err := h.containerService.DirectUpdate(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, container)
}

// Delete soft-deletes the container
func (h *ContainerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.containerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Restore brings a soft-deleted container back
func (h *ContainerHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.containerService.Restore(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
