package generator

import (
	"strings"
)

const fallbackBaseURL = "http://localhost:3000"

// Site carries the publication-wide values the generators need. It is
// passed explicitly to every generator.
type Site struct {
	Name        string
	Description string
	BaseURL     string
	Language    string
	// LogoURL overrides the publisher logo, which defaults to BaseURL/logo.png.
	LogoURL string
}

// Base returns the base URL without a trailing slash.
func (s Site) Base() string {
	trimmed := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if trimmed == "" {
		return fallbackBaseURL
	}
	return trimmed
}

// Absolute joins route onto the base URL.
func (s Site) Absolute(route string) string {
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return s.Base()
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return s.Base() + normalized
}

// Logo returns the publisher logo URL.
func (s Site) Logo() string {
	if logo := strings.TrimSpace(s.LogoURL); logo != "" {
		return logo
	}
	return s.Base() + "/logo.png"
}

func normalizeWhitespace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
