package service

import (
	"testing"

	"storefront/internal/http-api/models"

	"github.com/stretchr/testify/assert"
)

func TestBrowserFamily(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      string
	}{
		{
			name:      "chrome on linux",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      "Chrome",
		},
		{
			name:      "firefox",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want:      "Firefox",
		},
		{
			name:      "safari on mac",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want:      "Safari",
		},
		{
			// Edge UAs contain Chrome; the Chrome substring wins. Both
			// requests from the same Edge install still agree on a family.
			name:      "edge classifies as chrome",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			want:      "Chrome",
		},
		{
			name:      "curl",
			userAgent: "curl/8.4.0",
			want:      "Unknown",
		},
		{
			name:      "empty",
			userAgent: "",
			want:      "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BrowserFamily(tt.userAgent))
		})
	}
}

func TestIsDeviceMatching(t *testing.T) {
	chromeUA := "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0.0.0 Safari/537.36"
	firefoxUA := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

	tests := []struct {
		name      string
		token     *models.RefreshToken
		ip        string
		userAgent string
		want      bool
	}{
		{
			name:      "same ip matches regardless of user agent",
			token:     &models.RefreshToken{IPAddress: "203.0.113.7", UserAgent: chromeUA},
			ip:        "203.0.113.7",
			userAgent: firefoxUA,
			want:      true,
		},
		{
			name:      "different ip but same browser family",
			token:     &models.RefreshToken{IPAddress: "203.0.113.7", UserAgent: chromeUA},
			ip:        "198.51.100.4",
			userAgent: chromeUA,
			want:      true,
		},
		{
			name:      "different ip and different family",
			token:     &models.RefreshToken{IPAddress: "203.0.113.7", UserAgent: chromeUA},
			ip:        "198.51.100.4",
			userAgent: firefoxUA,
			want:      false,
		},
		{
			// both user agents unidentifiable: Unknown == Unknown
			name:      "two unknown user agents match",
			token:     &models.RefreshToken{IPAddress: "203.0.113.7", UserAgent: "curl/8.4.0"},
			ip:        "198.51.100.4",
			userAgent: "python-requests/2.31",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeviceMatching(tt.token, tt.ip, tt.userAgent))
		})
	}
}
