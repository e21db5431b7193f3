package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"realtyBack/internal/geo"
	"realtyBack/internal/models"
	"realtyBack/internal/repositories"
	"realtyBack/internal/storage"
)

const (
	minImages = 1
	maxImages = 6

	minNameLen = 10
	maxNameLen = 32
)

// ListingStore is the document-store surface the service needs.
type ListingStore interface {
	CreateListing(ctx context.Context, listing models.Listing) (string, error)
	GetListingByID(ctx context.Context, id string) (models.Listing, error)
	UpdateListing(ctx context.Context, id string, listing models.Listing) error
	DeleteListing(ctx context.Context, id string) error
	GetListingsByCategory(ctx context.Context, listingType models.ListingType, limit, offset int) ([]models.Listing, error)
	GetOffers(ctx context.Context, limit int) ([]models.Listing, error)
	GetLatest(ctx context.Context, limit int) ([]models.Listing, error)
}

type Geocoder interface {
	Resolve(ctx context.Context, address string, enabled bool, fallback models.Geolocation) (models.Geolocation, error)
}

type ImageUploader interface {
	UploadAll(ctx context.Context, files []*multipart.FileHeader, ownerID string, progress storage.ProgressFunc) ([]string, error)
}

type ListingService struct {
	ListingRepo ListingStore
	Geocoder    Geocoder
	Uploader    ImageUploader
	OffersCache *repositories.OffersCache
	ErrorLog    *log.Logger
}

// SubmitResult carries the generated listing id and the navigation target for
// a successful submission.
type SubmitResult struct {
	ID           string `json:"id"`
	RedirectPath string `json:"redirect_path"`
}

var _ Geocoder = (*geo.Client)(nil)
var _ ImageUploader = (*storage.S3Uploader)(nil)
var _ ListingStore = (*repositories.ListingRepository)(nil)

// Submit runs the whole submission pipeline: validate, resolve geolocation,
// upload the image batch, persist. The stages are strictly ordered: the
// address is resolved before any upload starts so a bad address never costs
// an upload batch. Every abort leaves the draft untouched and the flow
// re-submittable.
func (s *ListingService) Submit(ctx context.Context, draft models.ListingDraft, ownerID string, geoEnabled bool, progress storage.ProgressFunc) (SubmitResult, error) {
	if err := validateDraft(draft, geoEnabled); err != nil {
		return SubmitResult{}, err
	}

	location, err := s.Geocoder.Resolve(ctx, draft.Address, geoEnabled, models.Geolocation{Lat: draft.Latitude, Lng: draft.Longitude})
	if err != nil {
		return SubmitResult{}, err
	}

	imgURLs, err := s.Uploader.UploadAll(ctx, draft.Images, ownerID, progress)
	if err != nil {
		return SubmitResult{}, err
	}

	listing := buildListing(draft, imgURLs, location, ownerID)

	id, err := s.ListingRepo.CreateListing(ctx, listing)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}

	return SubmitResult{
		ID:           id,
		RedirectPath: fmt.Sprintf("/category/%s/%s", listing.Type, id),
	}, nil
}

// EditListing reruns the submission pipeline against an existing document.
// Only the owner may edit; the original creation timestamp is kept.
func (s *ListingService) EditListing(ctx context.Context, id string, draft models.ListingDraft, ownerID string, geoEnabled bool, progress storage.ProgressFunc) (SubmitResult, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}
	if existing.UserRef != ownerID {
		return SubmitResult{}, models.ErrNotListingOwner
	}

	if err := validateDraft(draft, geoEnabled); err != nil {
		return SubmitResult{}, err
	}

	location, err := s.Geocoder.Resolve(ctx, draft.Address, geoEnabled, models.Geolocation{Lat: draft.Latitude, Lng: draft.Longitude})
	if err != nil {
		return SubmitResult{}, err
	}

	imgURLs, err := s.Uploader.UploadAll(ctx, draft.Images, ownerID, progress)
	if err != nil {
		return SubmitResult{}, err
	}

	listing := buildListing(draft, imgURLs, location, ownerID)
	listing.Timestamp = existing.Timestamp

	if err := s.ListingRepo.UpdateListing(ctx, id, listing); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}

	return SubmitResult{
		ID:           id,
		RedirectPath: fmt.Sprintf("/category/%s/%s", listing.Type, id),
	}, nil
}

func (s *ListingService) DeleteListing(ctx context.Context, id string, ownerID string) error {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserRef != ownerID {
		return models.ErrNotListingOwner
	}
	// Uploaded blobs are left behind, same as for a failed submission.
	return s.ListingRepo.DeleteListing(ctx, id)
}

func (s *ListingService) GetListingByID(ctx context.Context, id string) (models.Listing, error) {
	return s.ListingRepo.GetListingByID(ctx, id)
}

func (s *ListingService) GetListingsByCategory(ctx context.Context, listingType models.ListingType, limit, offset int) ([]models.Listing, error) {
	if !listingType.Valid() {
		return nil, fmt.Errorf("%w: unknown listing type %q", models.ErrInvalidInput, listingType)
	}
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.ListingRepo.GetListingsByCategory(ctx, listingType, limit, offset)
}

// GetOffers serves the offers feed through the cache when one is configured.
// Cache failures only cost the round trip to the document store.
func (s *ListingService) GetOffers(ctx context.Context, limit int) ([]models.Listing, error) {
	if limit < 1 {
		limit = 10
	}

	if s.OffersCache != nil {
		listings, hit, err := s.OffersCache.Get(ctx, limit)
		if err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("offers cache get: %v", err)
		}
		if hit {
			return listings, nil
		}
	}

	listings, err := s.ListingRepo.GetOffers(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.OffersCache != nil {
		if err := s.OffersCache.Set(ctx, limit, listings); err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("offers cache set: %v", err)
		}
	}
	return listings, nil
}

func (s *ListingService) GetLatest(ctx context.Context, limit int) ([]models.Listing, error) {
	if limit < 1 {
		limit = 5
	}
	return s.ListingRepo.GetLatest(ctx, limit)
}

// validateDraft enforces the cross-field invariants before any network call.
func validateDraft(draft models.ListingDraft, geoEnabled bool) error {
	if n := len(draft.Name); n < minNameLen || n > maxNameLen {
		return fmt.Errorf("%w: name must be %d-%d characters", models.ErrInvalidInput, minNameLen, maxNameLen)
	}
	if !draft.Type.Valid() {
		return fmt.Errorf("%w: type must be sale or rent", models.ErrInvalidInput)
	}
	if draft.Bedrooms < 0 || draft.Bedrooms > 50 || draft.Bathrooms < 0 || draft.Bathrooms > 50 {
		return fmt.Errorf("%w: bedrooms and bathrooms must be between 0 and 50", models.ErrInvalidInput)
	}
	if draft.RegularPrice < 1 {
		return fmt.Errorf("%w: regular price must be at least 1", models.ErrInvalidInput)
	}
	if draft.Offer {
		if draft.DiscountedPrice < 1 {
			return fmt.Errorf("%w: discounted price must be at least 1", models.ErrInvalidInput)
		}
		if draft.DiscountedPrice >= draft.RegularPrice {
			return fmt.Errorf("%w: discounted price must be below regular price", models.ErrInvalidInput)
		}
	}
	if n := len(draft.Images); n < minImages || n > maxImages {
		return fmt.Errorf("%w: between %d and %d images required", models.ErrInvalidInput, minImages, maxImages)
	}
	if !geoEnabled {
		if draft.Latitude < -90 || draft.Latitude > 90 || draft.Longitude < -180 || draft.Longitude > 180 {
			return fmt.Errorf("%w: manual coordinates out of range", models.ErrInvalidInput)
		}
	}
	return nil
}

// buildListing assembles the persisted document from the draft: raw file
// handles are dropped in favor of the uploaded URLs, manual coordinates are
// dropped in favor of the resolved geolocation, and the discounted price is
// omitted unless the listing is an offer. Timestamp stays zero so the store
// assigns it.
func buildListing(draft models.ListingDraft, imgURLs []string, location models.Geolocation, ownerID string) models.Listing {
	listing := models.Listing{
		Name:         draft.Name,
		Description:  draft.Description,
		Address:      draft.Address,
		Type:         draft.Type,
		Bedrooms:     draft.Bedrooms,
		Bathrooms:    draft.Bathrooms,
		RegularPrice: draft.RegularPrice,
		Furnished:    draft.Furnished,
		Parking:      draft.Parking,
		Offer:        draft.Offer,
		ImgURLs:      imgURLs,
		Geolocation:  location,
		UserRef:      ownerID,
	}
	if draft.Offer {
		listing.DiscountedPrice = draft.DiscountedPrice
	}
	return listing
}
