// Package devseed populates a development store with demo travellers, owners and listings.
package devseed

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
	"github.com/hillstay/hillstay/internal/ports"
)

// Stores bundles the dependencies needed for development seeding.
type Stores struct {
	Profiles ports.ProfileStore
	Listings ports.ListingStore
}

// Profile is one seeded user document.
type Profile struct {
	UID   string
	Patch model.ProfilePatch
}

// OwnerListings is the seeded inventory of one owner.
type OwnerListings struct {
	OwnerID  string
	Listings []model.Listing
}

// Run seeds every default profile, then the listings of each seeded owner.
// Profiles are merged so re-running keeps any fields edited since.
func Run(ctx context.Context, stores Stores, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	failures := 0
	for _, p := range DefaultProfiles() {
		if err := seedProfile(ctx, stores.Profiles, p); err != nil {
			logger.ErrorContext(ctx, "failed to seed profile", "uid", p.UID, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded profile", "uid", p.UID)
	}

	for _, ol := range DefaultListings() {
		if err := stores.Listings.BatchUpsertAndPruneByOwner(ctx, ol.OwnerID, ol.Listings); err != nil {
			logger.ErrorContext(ctx, "failed to seed listings", "owner_id", ol.OwnerID, "error", err)
			failures++
			continue
		}
		logger.InfoContext(ctx, "seeded listings", "owner_id", ol.OwnerID, "count", len(ol.Listings))
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func seedProfile(ctx context.Context, store ports.ProfileStore, p Profile) error {
	patch := p.Patch
	if err := patch.Validate(); err != nil {
		return err
	}
	return store.Merge(ctx, p.UID, patch.Fields(), model.MergeOptions{})
}

// DefaultProfiles returns the demo users. Owners must be seeded before their listings.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			UID: "dev-user",
			Patch: model.ProfilePatch{
				DisplayName:   strPtr("Dev Traveller"),
				Email:         strPtr("dev@example.com"),
				UserType:      rolePtr(domainauth.RoleUser),
				VisitedPlaces: []string{"Shimla", "Manali"},
				SavedPlaces:   []string{"Spiti Valley"},
			},
		},
		{
			UID: "dev-owner-hotel",
			Patch: model.ProfilePatch{
				DisplayName:     strPtr("Snow View Hotels"),
				Email:           strPtr("owner@example.com"),
				PhoneNumber:     strPtr("+919800000001"),
				UserType:        rolePtr(domainauth.RoleOwner),
				Profession:      strPtr(string(model.ListingCategoryHotel)),
				BusinessAddress: strPtr("Mall Road, Manali"),
				LicenseNumber:   strPtr("HP-HOTEL-0001"),
			},
		},
		{
			UID: "dev-owner-trek",
			Patch: model.ProfilePatch{
				DisplayName: strPtr("Dhauladhar Treks"),
				Email:       strPtr("treks@example.com"),
				UserType:    rolePtr(domainauth.RoleOwner),
				Profession:  strPtr(string(model.ListingCategoryTrek)),
			},
		},
	}
}

// DefaultListings returns the demo owner inventory.
func DefaultListings() []OwnerListings {
	return []OwnerListings{
		{
			OwnerID: "dev-owner-hotel",
			Listings: []model.Listing{
				{
					ID:          "snow-view-deluxe",
					Category:    model.ListingCategoryHotel,
					Name:        "Snow View Deluxe Room",
					Location:    "Manali",
					Description: "Valley-facing room with heating and breakfast.",
					Price:       3500,
					Details:     map[string]string{"rooms": "12", "checkin": "12:00"},
				},
				{
					ID:       "snow-view-cottage",
					Category: model.ListingCategoryHotel,
					Name:     "Orchard Cottage",
					Location: "Old Manali",
					Price:    5200,
				},
			},
		},
		{
			OwnerID: "dev-owner-trek",
			Listings: []model.Listing{
				{
					ID:          "triund-weekend",
					Category:    model.ListingCategoryTrek,
					Name:        "Triund Weekend Trek",
					Location:    "McLeod Ganj",
					Description: "Two-day guided trek with camping.",
					Price:       2400,
					Details:     map[string]string{"difficulty": "easy", "days": "2"},
				},
			},
		},
	}
}

func strPtr(s string) *string { return &s }

func rolePtr(r domainauth.Role) *domainauth.Role { return &r }
