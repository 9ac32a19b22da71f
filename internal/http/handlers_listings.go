package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hillstay/hillstay/internal/domain/model"
)

// ListingAPI is the owner dashboard surface exposed over HTTP.
type ListingAPI interface {
	List(ctx context.Context) (model.ListingPage, error)
	Put(ctx context.Context, listing model.Listing) (model.Listing, error)
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context, listings []model.Listing) ([]model.Listing, error)
}

// ListingHandlers serves the owner listing endpoints.
type ListingHandlers struct {
	Svc ListingAPI
}

type listingsBody struct {
	Listings []model.Listing `json:"listings"`
}

// List returns the owner's listings, flagged stale when served from cache.
// GET /api/listings.
func (h *ListingHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Svc.List(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// Sync replaces the owner's listings with the request body.
// PUT /api/listings.
func (h *ListingHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	var req listingsBody
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Listings == nil {
		req.Listings = []model.Listing{}
	}
	out, err := h.Svc.Sync(r.Context(), req.Listings)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, listingsBody{Listings: out})
}

// Put creates or replaces one listing.
// PUT /api/listings/{id}.
func (h *ListingHandlers) Put(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var listing model.Listing
	if !DecodeJSON(w, r, &listing) {
		return
	}
	if listing.ID != "" && listing.ID != id {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "id_mismatch",
			Err:     errors.New("listing id does not match the path"),
			Field:   "id",
		})
		return
	}
	listing.ID = id
	out, err := h.Svc.Put(r.Context(), listing)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// Delete removes one listing.
// DELETE /api/listings/{id}.
func (h *ListingHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
