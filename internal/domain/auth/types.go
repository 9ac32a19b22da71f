package auth

// Package auth contains domain-level types for identities, roles and the client session.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents the application-level permission tier stored in the profile document.
// Keep string form for easy persistence and JSON.
type Role string

const (
	RoleUnset Role = ""
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// Valid reports whether r is one of the assignable roles (guest, user, owner).
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleOwner:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role string and reports whether it is assignable.
func ParseRole(value string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if r.Valid() {
		return r, true
	}
	return RoleUnset, false
}

// LoginMethod classifies how an identity authenticated.
type LoginMethod string

const (
	LoginMethodUnknown   LoginMethod = ""
	LoginMethodGoogle    LoginMethod = "google"
	LoginMethodPhone     LoginMethod = "phone"
	LoginMethodEmail     LoginMethod = "email"
	LoginMethodAnonymous LoginMethod = "anonymous"
)

// Identity is the external provider's authenticated principal.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
	Phone       string
	IsAnonymous bool
	// ProviderID is the provider-chain identifier (e.g. "google.com", "phone", "password").
	ProviderID string
}

// Profile mirrors the durable per-user fields of the profile document.
type Profile struct {
	DisplayName    string      `json:"display_name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	PhoneVerified  bool        `json:"phone_verified"`
	LoginMethod    LoginMethod `json:"login_method"`
	VisitedPlaces  []string    `json:"visited_places,omitempty"`
	RecentBookings []string    `json:"recent_bookings,omitempty"`
	SavedPlaces    []string    `json:"saved_places,omitempty"`
}

// OwnerProfile holds business details; present only for owners.
type OwnerProfile struct {
	Profession      string `json:"profession"`
	BusinessAddress string `json:"business_address"`
	LicenseNumber   string `json:"license_number"`
}

// Session is the in-memory state held by the session controller for the lifetime of the process.
type Session struct {
	// Identity is nil unless authenticated.
	Identity        *Identity     `json:"-"`
	UID             string        `json:"uid,omitempty"`
	Anonymous       bool          `json:"anonymous"`
	IsAuthenticated bool          `json:"is_authenticated"`
	IsLoading       bool          `json:"is_loading"`
	Role            Role          `json:"role"`
	Profile         Profile       `json:"profile"`
	OwnerProfile    *OwnerProfile `json:"owner_profile,omitempty"`
	// OwnerID mirrors UID when Role is owner; used as the foreign key for listings.
	OwnerID string `json:"owner_id,omitempty"`
	// ProfileVersion is the version of the profile document last applied.
	ProfileVersion int64     `json:"profile_version"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

// InitialSession is the state from process start until the first identity resolution.
func InitialSession() Session {
	return Session{IsLoading: true}
}

// ResetSession is the default signed-out shape.
func ResetSession() Session {
	return Session{}
}

// IsOwner returns true if the session role is owner.
func (s Session) IsOwner() bool { return s.Role == RoleOwner && s.OwnerID != "" }

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Clone returns a deep copy safe to hand to other goroutines.
func (s Session) Clone() Session {
	out := s
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	if s.OwnerProfile != nil {
		op := *s.OwnerProfile
		out.OwnerProfile = &op
	}
	out.Profile.VisitedPlaces = cloneStrings(s.Profile.VisitedPlaces)
	out.Profile.RecentBookings = cloneStrings(s.Profile.RecentBookings)
	out.Profile.SavedPlaces = cloneStrings(s.Profile.SavedPlaces)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
