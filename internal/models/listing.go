package models

import (
	"mime/multipart"
	"time"
)

type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

func (t ListingType) Valid() bool {
	return t == ListingTypeSale || t == ListingTypeRent
}

type Geolocation struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// ListingDraft is the in-progress listing as assembled from the submission
// form. Image files stay as raw multipart handles until the upload stage.
type ListingDraft struct {
	Name            string
	Description     string
	Address         string
	Type            ListingType
	Bedrooms        int
	Bathrooms       int
	RegularPrice    float64
	DiscountedPrice float64
	Furnished       bool
	Parking         bool
	Offer           bool
	Images          []*multipart.FileHeader
	// Manual coordinates, used only when geocoding is disabled.
	Latitude  float64
	Longitude float64
}

// Listing is the persisted document. Timestamp is assigned by the document
// store on create; ID is the generated document identifier.
type Listing struct {
	ID              string      `json:"id" firestore:"-"`
	Name            string      `json:"name" firestore:"name"`
	Description     string      `json:"description" firestore:"description"`
	Address         string      `json:"address" firestore:"address"`
	Type            ListingType `json:"type" firestore:"type"`
	Bedrooms        int         `json:"bedrooms" firestore:"bedrooms"`
	Bathrooms       int         `json:"bathrooms" firestore:"bathrooms"`
	RegularPrice    float64     `json:"regular_price" firestore:"regularPrice"`
	DiscountedPrice float64     `json:"discounted_price,omitempty" firestore:"discountedPrice,omitempty"`
	Furnished       bool        `json:"furnished" firestore:"furnished"`
	Parking         bool        `json:"parking" firestore:"parking"`
	Offer           bool        `json:"offer" firestore:"offer"`
	ImgURLs         []string    `json:"img_urls" firestore:"imgUrls"`
	Geolocation     Geolocation `json:"geolocation" firestore:"geolocation"`
	UserRef         string      `json:"user_ref" firestore:"userRef"`
	Timestamp       time.Time   `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}

// UploadProgressEvent is pushed to the submitting user's websocket while an
// image batch is in flight. Observability only; submission results never
// depend on it.
type UploadProgressEvent struct {
	ListingName string `json:"listing_name"`
	File        string `json:"file"`
	Transferred int64  `json:"transferred"`
	Total       int64  `json:"total"`
}
