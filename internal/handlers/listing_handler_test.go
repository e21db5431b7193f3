package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"realtyBack/internal/models"
)

func multipartRequest(t *testing.T, fields map[string]string, images ...string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	for _, name := range images {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := part.Write([]byte("jpeg bytes")); err != nil {
			t.Fatalf("writing image part failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/listing", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("ParseMultipartForm failed: %v", err)
	}
	return req
}

func TestDraftFromForm(t *testing.T) {
	req := multipartRequest(t, map[string]string{
		"name":            "Modern Loft",
		"description":     "Bright two-bedroom loft",
		"address":         "12 Hudson St, New York",
		"type":            "rent",
		"bedrooms":        "2",
		"bathrooms":       "1",
		"regularPrice":    "2000",
		"discountedPrice": "1800",
		"furnished":       "true",
		"parking":         "false",
		"offer":           "true",
	}, "front.jpg", "kitchen.jpg")

	draft := draftFromForm(req)

	if draft.Name != "Modern Loft" {
		t.Fatalf("unexpected name %q", draft.Name)
	}
	if draft.Type != models.ListingTypeRent {
		t.Fatalf("unexpected type %q", draft.Type)
	}
	if draft.Bedrooms != 2 || draft.Bathrooms != 1 {
		t.Fatalf("unexpected rooms: %d/%d", draft.Bedrooms, draft.Bathrooms)
	}
	if draft.RegularPrice != 2000 || draft.DiscountedPrice != 1800 {
		t.Fatalf("unexpected prices: %v/%v", draft.RegularPrice, draft.DiscountedPrice)
	}
	if !draft.Furnished || draft.Parking || !draft.Offer {
		t.Fatalf("unexpected flags: furnished=%v parking=%v offer=%v",
			draft.Furnished, draft.Parking, draft.Offer)
	}
	if len(draft.Images) != 2 ||
		draft.Images[0].Filename != "front.jpg" ||
		draft.Images[1].Filename != "kitchen.jpg" {
		t.Fatalf("expected both images in submission order, got %d", len(draft.Images))
	}
}

func TestDraftFromFormManualCoordinates(t *testing.T) {
	req := multipartRequest(t, map[string]string{
		"latitude":  "51.1",
		"longitude": "71.4",
	})

	draft := draftFromForm(req)
	if draft.Latitude != 51.1 || draft.Longitude != 71.4 {
		t.Fatalf("unexpected coordinates: %v/%v", draft.Latitude, draft.Longitude)
	}
}

func TestDraftFromFormNoMultipart(t *testing.T) {
	req := httptest.NewRequest("POST", "/listing", nil)

	draft := draftFromForm(req)
	if draft.Name != "" || len(draft.Images) != 0 {
		t.Fatalf("expected zero draft without form data, got %+v", draft)
	}
}

func TestWriteSubmitErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: name too short", models.ErrInvalidInput), http.StatusBadRequest},
		{"address not found", models.ErrAddressNotFound, http.StatusBadRequest},
		{"not owner", models.ErrNotListingOwner, http.StatusForbidden},
		{"listing missing", models.ErrListingNotFound, http.StatusNotFound},
		{"upload failed", fmt.Errorf("%w: storage rejected", models.ErrUploadFailed), http.StatusInternalServerError},
		{"persistence failed", fmt.Errorf("%w: backend down", models.ErrPersistenceFailed), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeSubmitError(rec, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("expected status %d, got %d", tc.code, rec.Code)
			}
		})
	}
}
