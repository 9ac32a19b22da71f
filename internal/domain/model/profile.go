//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
)

// Profile document keys as persisted by the profile store.
const (
	ProfileKeyDisplayName     = "displayName"
	ProfileKeyEmail           = "email"
	ProfileKeyPhoneNumber     = "phoneNumber"
	ProfileKeyPhoneVerified   = "phoneVerified"
	ProfileKeyUserType        = "userType"
	ProfileKeyProfession      = "profession"
	ProfileKeyBusinessAddress = "businessAddress"
	ProfileKeyLicenseNumber   = "licenseNumber"
	ProfileKeyVisitedPlaces   = "visitedPlaces"
	ProfileKeyRecentBookings  = "recentBookings"
	ProfileKeySavedPlaces     = "savedPlaces"
	ProfileKeyUpdatedAt       = "updatedAt"
	ProfileKeyDeleted         = "deleted"
	ProfileKeyDeletedAt       = "deletedAt"
)

// ProfileDocument is the remote key/value record holding durable per-user fields.
// Version is maintained by the store and is not part of the document body.
type ProfileDocument struct {
	DisplayName     string          `json:"displayName,omitempty"`
	Email           string          `json:"email,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty"`
	PhoneVerified   bool            `json:"phoneVerified,omitempty"`
	UserType        domainauth.Role `json:"userType,omitempty"`
	Profession      string          `json:"profession,omitempty"`
	BusinessAddress string          `json:"businessAddress,omitempty"`
	LicenseNumber   string          `json:"licenseNumber,omitempty"`
	VisitedPlaces   []string        `json:"visitedPlaces,omitempty"`
	RecentBookings  []string        `json:"recentBookings,omitempty"`
	SavedPlaces     []string        `json:"savedPlaces,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	Deleted         bool            `json:"deleted,omitempty"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`

	Version int64 `json:"-"`
}

// ProfilePatch is a partial update merged into a profile document.
// Nil fields are left untouched; non-nil slices replace the stored list.
type ProfilePatch struct {
	DisplayName     *string          `validate:"omitempty,max=120"`
	Email           *string          `validate:"omitempty,email,max=254"`
	PhoneNumber     *string          `validate:"omitempty,e164"`
	PhoneVerified   *bool            `validate:"-"`
	UserType        *domainauth.Role `validate:"omitempty,oneof=guest user owner"`
	Profession      *string          `validate:"omitempty,max=120"`
	BusinessAddress *string          `validate:"omitempty,max=500"`
	LicenseNumber   *string          `validate:"omitempty,max=64"`
	VisitedPlaces   []string         `validate:"omitempty,max=500,dive,required,max=200"`
	RecentBookings  []string         `validate:"omitempty,max=500,dive,required,max=200"`
	SavedPlaces     []string         `validate:"omitempty,max=500,dive,required,max=200"`
	Deleted         *bool            `validate:"-"`
	DeletedAt       *time.Time       `validate:"-"`
	UpdatedAt       *time.Time       `validate:"-"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p *ProfilePatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Validate checks field formats and lengths.
func (p *ProfilePatch) Validate() error {
	if p == nil {
		return errors.New("profile patch is required")
	}
	if p.DisplayName != nil {
		trimmed := strings.TrimSpace(*p.DisplayName)
		p.DisplayName = &trimmed
	}
	if p.Email != nil {
		trimmed := strings.TrimSpace(*p.Email)
		p.Email = &trimmed
	}
	return validateStruct(p)
}

// Fields returns the patch as document keys for a merge.
func (p *ProfilePatch) Fields() map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}
	setString(out, ProfileKeyDisplayName, p.DisplayName)
	setString(out, ProfileKeyEmail, p.Email)
	setString(out, ProfileKeyPhoneNumber, p.PhoneNumber)
	if p.PhoneVerified != nil {
		out[ProfileKeyPhoneVerified] = *p.PhoneVerified
	}
	if p.UserType != nil {
		out[ProfileKeyUserType] = string(*p.UserType)
	}
	setString(out, ProfileKeyProfession, p.Profession)
	setString(out, ProfileKeyBusinessAddress, p.BusinessAddress)
	setString(out, ProfileKeyLicenseNumber, p.LicenseNumber)
	setList(out, ProfileKeyVisitedPlaces, p.VisitedPlaces)
	setList(out, ProfileKeyRecentBookings, p.RecentBookings)
	setList(out, ProfileKeySavedPlaces, p.SavedPlaces)
	if p.Deleted != nil {
		out[ProfileKeyDeleted] = *p.Deleted
	}
	setTime(out, ProfileKeyDeletedAt, p.DeletedAt)
	setTime(out, ProfileKeyUpdatedAt, p.UpdatedAt)
	return out
}

func setString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func setList(m map[string]any, key string, v []string) {
	if v != nil {
		m[key] = append([]string{}, v...)
	}
}

func setTime(m map[string]any, key string, v *time.Time) {
	if v != nil {
		m[key] = v.UTC().Format(time.RFC3339Nano)
	}
}

// MergeProfile applies patch fields on top of doc with shallow key replacement,
// matching a JSONB "doc || patch" merge. The version is carried over unchanged.
func MergeProfile(doc ProfileDocument, patch map[string]any) (ProfileDocument, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return ProfileDocument{}, fmt.Errorf("encode profile: %w", err)
	}
	base := make(map[string]any)
	if unmarshalErr := json.Unmarshal(raw, &base); unmarshalErr != nil {
		return ProfileDocument{}, fmt.Errorf("decode profile: %w", unmarshalErr)
	}
	for k, v := range patch {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return ProfileDocument{}, fmt.Errorf("encode merged profile: %w", err)
	}
	var out ProfileDocument
	if unmarshalErr := json.Unmarshal(merged, &out); unmarshalErr != nil {
		return ProfileDocument{}, fmt.Errorf("decode merged profile: %w", unmarshalErr)
	}
	out.Version = doc.Version
	return out, nil
}

// MergeOptions controls concurrency checks on a profile merge.
type MergeOptions struct {
	// ExpectedVersion, when set, rejects the merge unless the stored version matches.
	// Zero means "document must not exist yet".
	ExpectedVersion *int64
}
