package services

import (
	"mime/multipart"
	"strconv"

	"realtyBack/internal/models"
)

// ApplyField returns the draft with one form field applied. Field ids match
// the submission form: "true"/"false" values map to booleans, the file input
// replaces the image set, numeric fields parse with a zero fallback and
// everything else passes through as text. A pure state transition: no
// validation happens here, that is deferred to submission time.
func ApplyField(draft models.ListingDraft, fieldID, value string, files []*multipart.FileHeader) models.ListingDraft {
	switch fieldID {
	case "name":
		draft.Name = value
	case "description":
		draft.Description = value
	case "address":
		draft.Address = value
	case "type":
		draft.Type = models.ListingType(value)
	case "bedrooms":
		draft.Bedrooms, _ = strconv.Atoi(value)
	case "bathrooms":
		draft.Bathrooms, _ = strconv.Atoi(value)
	case "regularPrice":
		draft.RegularPrice, _ = strconv.ParseFloat(value, 64)
	case "discountedPrice":
		draft.DiscountedPrice, _ = strconv.ParseFloat(value, 64)
	case "furnished":
		draft.Furnished = value == "true"
	case "parking":
		draft.Parking = value == "true"
	case "offer":
		draft.Offer = value == "true"
	case "images":
		draft.Images = files
	case "latitude":
		draft.Latitude, _ = strconv.ParseFloat(value, 64)
	case "longitude":
		draft.Longitude, _ = strconv.ParseFloat(value, 64)
	}
	return draft
}
