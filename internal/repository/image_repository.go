package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	apperrors "go-plant-inspector/internal/errors"
	"go-plant-inspector/internal/storage"
	"go-plant-inspector/pkg/models"
	"go-plant-inspector/pkg/validation"
)

// SourceRepository routes photo references to the fetcher registered for
// their URL scheme
type SourceRepository struct {
	mu        sync.RWMutex
	fetchers  map[string]storage.ImageFetcher
	validator *validation.URLValidator
}

// NewSourceRepository creates a repository without any sources
func NewSourceRepository() *SourceRepository {
	return &SourceRepository{
		fetchers:  make(map[string]storage.ImageFetcher),
		validator: validation.NewURLValidatorWithOptions(nil, nil),
	}
}

// Register serves the given schemes with fetcher, replacing earlier entries
func (r *SourceRepository) Register(fetcher storage.ImageFetcher, schemes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schemes {
		r.fetchers[s] = fetcher
	}
	r.validator = validation.NewURLValidatorWithOptions(r.schemesLocked(), nil)
}

// Schemes lists the registered schemes in sorted order
func (r *SourceRepository) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemesLocked()
}

func (r *SourceRepository) schemesLocked() []string {
	schemes := make([]string, 0, len(r.fetchers))
	for s := range r.fetchers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// ValidateImageURL validates if the provided reference is acceptable
func (r *SourceRepository) ValidateImageURL(ref string) error {
	r.mu.RLock()
	validator := r.validator
	r.mu.RUnlock()
	return validator.ValidateImageURL(ref)
}

// FetchImage acquires the photo. Source failures become capture errors.
func (r *SourceRepository) FetchImage(ctx context.Context, ref string) (*storage.Photo, error) {
	if err := r.ValidateImageURL(ref); err != nil {
		return nil, err
	}

	fetcher, err := r.fetcherFor(ref)
	if err != nil {
		return nil, err
	}

	photo, err := fetcher.FetchImage(ctx, ref)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	return photo, nil
}

// GetImageMetadata fetches the photo and returns what was learned about it
func (r *SourceRepository) GetImageMetadata(ctx context.Context, ref string) (*models.ImageMetadata, error) {
	photo, err := r.FetchImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	md := photo.Metadata
	return &md, nil
}

func (r *SourceRepository) fetcherFor(ref string) (storage.ImageFetcher, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid URL format", fmt.Errorf("%w: %v", ErrInvalidImageURL, err))
	}

	r.mu.RLock()
	fetcher, ok := r.fetchers[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("No image source for scheme %q", u.Scheme),
			ErrUnsupportedScheme,
		)
	}
	return fetcher, nil
}

// classifyFetchError maps fetcher errors onto application error types.
// Corrupt content is an analysis failure wherever it came from.
func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, storage.ErrDecode):
		return apperrors.NewAnalysisError("Photo could not be decoded", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Timed out acquiring the photo", err)
	case errors.Is(err, storage.ErrPathTraversal):
		return apperrors.NewValidationError("Image path is outside the photo directory", err)
	case errors.Is(err, storage.ErrUnsupportedFormat):
		return apperrors.NewCaptureError("Source did not return a JPEG, PNG or GIF photo", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewCaptureError("Photo is too large", err)
	case errors.Is(err, storage.ErrImageNotFound):
		return apperrors.NewCaptureError("Photo not found at source", err)
	default:
		return apperrors.NewCaptureError("Failed to acquire photo", err)
	}
}
