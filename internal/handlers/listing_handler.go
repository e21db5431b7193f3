package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"realtyBack/internal/models"
	"realtyBack/internal/services"
	"realtyBack/internal/storage"
)

type ListingHandler struct {
	Service *services.ListingService
	// Progress, when wired, receives per-file upload counts for the
	// submitting user. Observability only.
	Progress func(userID int, event models.UploadProgressEvent)
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(32 << 20) // 32MB
	if err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value("user_id").(int)
	if !ok || userID == 0 {
		http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
		return
	}

	draft := draftFromForm(r)
	geoEnabled := r.FormValue("geolocation_enabled") != "false"

	result, err := h.Service.Submit(r.Context(), draft, strconv.Itoa(userID), geoEnabled, h.progressFunc(userID, draft.Name))
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", result.RedirectPath)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	if id == "" {
		http.Error(w, "Missing listing ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value("user_id").(int)
	if !ok || userID == 0 {
		http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
		return
	}

	draft := draftFromForm(r)
	geoEnabled := r.FormValue("geolocation_enabled") != "false"

	result, err := h.Service.EditListing(r.Context(), id, draft, strconv.Itoa(userID), geoEnabled, h.progressFunc(userID, draft.Name))
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	if id == "" {
		http.Error(w, "Missing listing ID", http.StatusBadRequest)
		return
	}

	userID, ok := r.Context().Value("user_id").(int)
	if !ok || userID == 0 {
		http.Error(w, "Missing authenticated user", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteListing(r.Context(), id, strconv.Itoa(userID)); err != nil {
		writeSubmitError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")
	if id == "" {
		http.Error(w, "Missing listing ID", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.GetListingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		log.Printf("GetListingByID error: %v", err)
		http.Error(w, "Failed to fetch listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) GetListingsByCategory(w http.ResponseWriter, r *http.Request) {
	listingType := models.ListingType(r.URL.Query().Get(":type"))

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	listings, err := h.Service.GetListingsByCategory(r.Context(), listingType, limit, offset)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listings, err := h.Service.GetOffers(r.Context(), limit)
	if err != nil {
		log.Printf("GetOffers error: %v", err)
		http.Error(w, "Failed to fetch offers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listings, err := h.Service.GetLatest(r.Context(), limit)
	if err != nil {
		log.Printf("GetLatest error: %v", err)
		http.Error(w, "Failed to fetch listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) progressFunc(userID int, listingName string) storage.ProgressFunc {
	if h.Progress == nil {
		return nil
	}
	return func(fileName string, transferred, total int64) {
		h.Progress(userID, models.UploadProgressEvent{
			ListingName: listingName,
			File:        fileName,
			Transferred: transferred,
			Total:       total,
		})
	}
}

// draftFromForm folds every multipart field through the form state
// transition, then attaches the uploaded file handles.
func draftFromForm(r *http.Request) models.ListingDraft {
	var draft models.ListingDraft
	if r.MultipartForm == nil {
		return draft
	}
	for field, values := range r.MultipartForm.Value {
		for _, value := range values {
			draft = services.ApplyField(draft, field, value, nil)
		}
	}
	return services.ApplyField(draft, "images", "", r.MultipartForm.File["images"])
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrAddressNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrNotListingOwner):
		http.Error(w, "Listing owned by another user", http.StatusForbidden)
	case errors.Is(err, models.ErrListingNotFound):
		http.Error(w, "Listing not found", http.StatusNotFound)
	case errors.Is(err, models.ErrUploadFailed):
		log.Printf("submit upload error: %v", err)
		http.Error(w, "Failed to upload images", http.StatusInternalServerError)
	default:
		log.Printf("submit error: %v", err)
		http.Error(w, "Failed to save listing", http.StatusInternalServerError)
	}
}
