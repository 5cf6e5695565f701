package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ObjectStorageService abstracts the object store holding product images.
// Clients upload and download through presigned URLs; the API never
// proxies image bytes.
type ObjectStorageService interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ErrImageNotUploaded is returned when an upload is confirmed before the
// object actually landed in storage.
var ErrImageNotUploaded = shared.NewDomainError("IMAGE_NOT_UPLOADED", "no object found under the pending image key")

var allowedImageContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ImageUploadResponse carries a presigned PUT URL for the client.
type ImageUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ImageDownloadResponse carries a presigned GET URL for the client.
type ImageDownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ProductImageService manages product images in object storage. Keys are
// derived from the product ID so a re-upload replaces the previous image.
type ProductImageService struct {
	productRepo catalog.ProductRepository
	storage     ObjectStorageService
}

// NewProductImageService creates a new ProductImageService
func NewProductImageService(productRepo catalog.ProductRepository, storage ObjectStorageService) *ProductImageService {
	return &ProductImageService{
		productRepo: productRepo,
		storage:     storage,
	}
}

// RequestUpload issues a presigned PUT URL for a product image. The key
// is not attached to the product until ConfirmUpload.
func (s *ProductImageService) RequestUpload(ctx context.Context, productID uuid.UUID, contentType string) (*ImageUploadResponse, error) {
	ext, ok := allowedImageContentTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unsupported image content type %q", contentType))
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	key := imageKey(productID, ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, 0)
	if err != nil {
		return nil, fmt.Errorf("generating upload url: %w", err)
	}
	return &ImageUploadResponse{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// ConfirmUpload verifies the object landed and attaches the key to the
// product head. A previously attached image under a different key is
// removed from storage.
func (s *ProductImageService) ConfirmUpload(ctx context.Context, productID uuid.UUID, storageKey string) error {
	if path.Dir(storageKey) != imagePrefix(productID) {
		return shared.NewDomainError("INVALID_INPUT", "storage key does not belong to this product")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("checking uploaded object: %w", err)
	}
	if !exists {
		return ErrImageNotUploaded
	}

	previous := product.ImageKey
	product.SetImageKey(storageKey)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	if previous != "" && previous != storageKey {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			// the replaced object is orphaned, not inconsistent
			return nil
		}
	}
	return nil
}

// DownloadURL issues a presigned GET URL for the product's image.
func (s *ProductImageService) DownloadURL(ctx context.Context, productID uuid.UUID) (*ImageDownloadResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return nil, shared.ErrNotFound
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, product.ImageKey, 0)
	if err != nil {
		return nil, fmt.Errorf("generating download url: %w", err)
	}
	return &ImageDownloadResponse{DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// Remove detaches and deletes the product's image.
func (s *ProductImageService) Remove(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.ImageKey == "" {
		return shared.ErrNotFound
	}

	key := product.ImageKey
	product.SetImageKey("")
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil && !errors.Is(err, shared.ErrNotFound) {
		// key is already detached; the orphan is swept manually
		return nil
	}
	return nil
}

func imagePrefix(productID uuid.UUID) string {
	return "products/" + productID.String()
}

func imageKey(productID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/image-%d%s", imagePrefix(productID), time.Now().UnixNano(), ext)
}
