package auth

import "strings"

// DeriveRole decides the session role for an identity and the role recorded in its profile document.
// A valid stored role wins; otherwise anonymous identities are guests and everyone else is a user.
// A nil identity has no role.
func DeriveRole(id *Identity, stored Role) Role {
	if id == nil {
		return RoleUnset
	}
	if stored.Valid() {
		return stored
	}
	if id.IsAnonymous {
		return RoleGuest
	}
	return RoleUser
}

// ClassifyLoginMethod maps a provider-chain identifier to a LoginMethod.
func ClassifyLoginMethod(providerID string, anonymous bool) LoginMethod {
	switch strings.ToLower(strings.TrimSpace(providerID)) {
	case "google.com", "google":
		return LoginMethodGoogle
	case "phone":
		return LoginMethodPhone
	case "password", "emaillink", "email":
		return LoginMethodEmail
	case "anonymous":
		return LoginMethodAnonymous
	case "":
		if anonymous {
			return LoginMethodAnonymous
		}
		return LoginMethodEmail
	default:
		if anonymous {
			return LoginMethodAnonymous
		}
		return LoginMethodEmail
	}
}
