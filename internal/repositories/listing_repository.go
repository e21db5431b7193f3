package repositories

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"realtyBack/internal/models"
)

const defaultListingCollection = "listings"

// ListingRepository stores listings as documents. The store assigns both the
// document identifier and the creation timestamp.
type ListingRepository struct {
	Client     *firestore.Client
	Collection string
}

func (r *ListingRepository) col() *firestore.CollectionRef {
	name := r.Collection
	if name == "" {
		name = defaultListingCollection
	}
	return r.Client.Collection(name)
}

// CreateListing writes a new document and returns its generated identifier.
func (r *ListingRepository) CreateListing(ctx context.Context, listing models.Listing) (string, error) {
	ref, _, err := r.col().Add(ctx, listing)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id string) (models.Listing, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Listing{}, models.ErrListingNotFound
		}
		return models.Listing{}, err
	}
	return docToListing(doc)
}

func (r *ListingRepository) UpdateListing(ctx context.Context, id string, listing models.Listing) error {
	_, err := r.col().Doc(id).Set(ctx, listing)
	return err
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

func (r *ListingRepository) GetListingsByCategory(ctx context.Context, listingType models.ListingType, limit, offset int) ([]models.Listing, error) {
	q := r.col().
		Where("type", "==", string(listingType)).
		OrderBy("timestamp", firestore.Desc).
		Offset(offset).
		Limit(limit)
	return r.queryListings(ctx, q)
}

// GetOffers returns discounted listings, newest first.
func (r *ListingRepository) GetOffers(ctx context.Context, limit int) ([]models.Listing, error) {
	q := r.col().
		Where("offer", "==", true).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit)
	return r.queryListings(ctx, q)
}

func (r *ListingRepository) GetLatest(ctx context.Context, limit int) ([]models.Listing, error) {
	q := r.col().
		OrderBy("timestamp", firestore.Desc).
		Limit(limit)
	return r.queryListings(ctx, q)
}

func (r *ListingRepository) queryListings(ctx context.Context, q firestore.Query) ([]models.Listing, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var listings []models.Listing
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		listing, err := docToListing(doc)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func docToListing(doc *firestore.DocumentSnapshot) (models.Listing, error) {
	var listing models.Listing
	if err := doc.DataTo(&listing); err != nil {
		return models.Listing{}, err
	}
	listing.ID = doc.Ref.ID
	return listing, nil
}
