package httpx

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ValidateCookieDomain rejects cookie domains a browser would refuse: IP
// addresses and bare public suffixes such as "com" or "co.uk". Empty is allowed
// and means host-only cookies.
func ValidateCookieDomain(domain string) error {
	d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return nil
	}
	if net.ParseIP(d) != nil {
		return fmt.Errorf("cookie domain %q must be a host name, not an IP address", domain)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return fmt.Errorf("cookie domain %q is a public suffix: %w", domain, err)
	}
	return nil
}
