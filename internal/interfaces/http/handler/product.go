package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/bartab/backend/internal/application/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ProductImageService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ProductImageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/purchasable", h.ListPurchasable)
		products.GET("/:id", h.Get)
		products.GET("/:id/revisions", h.GetRevisions)
		products.PUT("/:id", h.DirectUpdate)
		products.POST("/:id/draft", h.CreateDraft)
		products.POST("/:id/approve", h.Approve)
		products.DELETE("/:id", h.Delete)
		products.POST("/:id/restore", h.Restore)

		products.POST("/:id/image/upload-url", h.RequestImageUpload)
		products.POST("/:id/image/confirm", h.ConfirmImageUpload)
		products.GET("/:id/image", h.ImageDownloadURL)
		products.DELETE("/:id/image", h.RemoveImage)
	}
}

// Create creates a product head with its first draft
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns a product with its current revision and pending draft
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetRevisions returns the full revision history of a product
func (h *ProductHandler) GetRevisions(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	revisions, err := h.productService.GetRevisions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, revisions)
}

// List returns all products
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, h.productService.List)
}

// ListPurchasable returns products eligible for purchase: not deleted
// and carrying an approved revision
func (h *ProductHandler) ListPurchasable(c *gin.Context) {
	h.list(c, h.productService.ListPurchaseEligible)
}

func (h *ProductHandler) list(c *gin.Context, fn func(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalogapp.ProductResponse], error)) {
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

// CreateDraft stages a new draft on the product
func (h *ProductHandler) CreateDraft(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.CreateDraft(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Approve promotes the pending draft to a new immutable revision
func (h *ProductHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	product, err := h.productService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DirectUpdate stages and approves a draft in one step
func (h *ProductHandler) DirectUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var payload catalogapp.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.DirectUpdate(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete soft-deletes the product; existing purchases keep their
// pinned revisions
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Restore brings a soft-deleted product back
func (h *ProductHandler) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.productService.Restore(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageUploadBody carries the content type of the image the client is
// about to upload
type ImageUploadBody struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ImageConfirmBody names the storage key returned by the upload-url
// endpoint
type ImageConfirmBody struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// RequestImageUpload returns a presigned upload URL for the product
// image
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var body ImageUploadBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.imageService.RequestUpload(c.Request.Context(), id, body.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmImageUpload attaches the uploaded object to the product
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	var body ImageConfirmBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.imageService.ConfirmUpload(c.Request.Context(), id, body.StorageKey); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageDownloadURL returns a presigned download URL for the product
// image
func (h *ProductHandler) ImageDownloadURL(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	resp, err := h.imageService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveImage detaches and deletes the product image
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, ok := parseIDParam(c, &h.BaseHandler, "id")
	if !ok {
		return
	}

	if err := h.imageService.Remove(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
