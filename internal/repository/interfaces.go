package repository

import (
	"context"

	"go-plant-inspector/internal/storage"
	"go-plant-inspector/pkg/models"
)

// ImageRepository defines the interface for photo acquisition
type ImageRepository interface {
	// FetchImage acquires and decodes the photo behind ref
	FetchImage(ctx context.Context, ref string) (*storage.Photo, error)

	// ValidateImageURL checks ref without contacting any source
	ValidateImageURL(ref string) error

	// GetImageMetadata reports format and dimensions of the photo behind ref
	GetImageMetadata(ctx context.Context, ref string) (*models.ImageMetadata, error)

	// Schemes lists the reference schemes with a registered source
	Schemes() []string
}
