//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
)

// LinkRequest carries the email/password credentials linked onto an anonymous identity.
type LinkRequest struct {
	Email       string `json:"email"        validate:"required,email,max=254"`
	Password    string `json:"password"     validate:"required,min=6,max=128"`
	DisplayName string `json:"display_name" validate:"max=120"`
}

// Validate trims and checks the request.
func (r *LinkRequest) Validate() error {
	if r == nil {
		return errors.New("link request is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	return validateStruct(r)
}
