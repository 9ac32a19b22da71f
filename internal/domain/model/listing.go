//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// ListingCategory narrows which profession a listing belongs to.
type ListingCategory string

const (
	ListingCategoryHotel ListingCategory = "hotel"
	ListingCategoryTrek  ListingCategory = "trek"
	ListingCategoryCab   ListingCategory = "cab"
	ListingCategoryGuide ListingCategory = "guide"
)

// Listing is a business owner's published offering.
type Listing struct {
	ID          string            `json:"id"                   db:"id"          validate:"omitempty,max=64"`
	OwnerID     string            `json:"owner_id"             db:"owner_id"    validate:"-"`
	Category    ListingCategory   `json:"category"             db:"category"    validate:"omitempty,oneof=hotel trek cab guide"`
	Name        string            `json:"name"                 db:"name"        validate:"required,max=200"`
	Location    string            `json:"location"             db:"location"    validate:"required,max=200"`
	Description string            `json:"description"          db:"description" validate:"max=5000"`
	Price       float64           `json:"price"                db:"price"       validate:"gte=0"`
	Photos      []string          `json:"photos"               db:"photos"      validate:"max=20,dive,url"`
	Details     map[string]string `json:"details,omitempty"    db:"details"     validate:"max=50"`
	CreatedAt   time.Time         `json:"created_at,omitzero"  db:"created_at"  validate:"-"`
	UpdatedAt   time.Time         `json:"updated_at,omitzero"  db:"updated_at"  validate:"-"`
}

// Normalize trims free-text fields in place.
func (l *Listing) Normalize() {
	l.Name = strings.TrimSpace(l.Name)
	l.Location = strings.TrimSpace(l.Location)
	l.Description = strings.TrimSpace(l.Description)
	l.Category = ListingCategory(strings.ToLower(strings.TrimSpace(string(l.Category))))
	if l.Photos == nil {
		l.Photos = []string{}
	}
}

// Validate normalizes and checks a listing before it is persisted.
func (l *Listing) Validate() error {
	if l == nil {
		return errors.New("listing is required")
	}
	l.Normalize()
	return validateStruct(l)
}

// ListingPage is the result of reading an owner's listings.
type ListingPage struct {
	Listings []Listing `json:"listings"`
	// Stale is true when the remote store was unavailable and the local cache was served.
	Stale    bool      `json:"stale"`
	CachedAt time.Time `json:"cached_at,omitzero"`
}
