package constants

import (
	"strings"
)

// PackageType classifies what a couple booked.
type PackageType string

const (
	PhotoOnly      PackageType = "photo_only"
	PhotoPlusVideo PackageType = "photo_video"
)

var allPackages = []PackageType{
	PhotoOnly,
	PhotoPlusVideo,
}

func PackageTypes() []string {
	result := make([]string, len(allPackages))
	for i, p := range allPackages {
		result[i] = string(p)
	}
	return result
}

// CanonicalizePackage maps the free-form labels the oracle tends to produce onto a PackageType.
func CanonicalizePackage(input string) (PackageType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]PackageType{
		"photo":                 PhotoOnly,
		"photos":                PhotoOnly,
		"photography":           PhotoOnly,
		"photography only":      PhotoOnly,
		"photo only":            PhotoOnly,
		"photo-only":            PhotoOnly,
		"photo + video":         PhotoPlusVideo,
		"photo and video":       PhotoPlusVideo,
		"photo & video":         PhotoPlusVideo,
		"photo-plus-video":      PhotoPlusVideo,
		"photo plus video":      PhotoPlusVideo,
		"photography + video":   PhotoPlusVideo,
		"photo & videography":   PhotoPlusVideo,
		"photo and videography": PhotoPlusVideo,
		"hybrid":                PhotoPlusVideo,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPackages {
		if normalized == string(p) {
			return p, true
		}
	}

	// "video" anywhere in a label means the couple bought coverage beyond stills
	if strings.Contains(normalized, "video") || strings.Contains(normalized, "film") {
		return PhotoPlusVideo, true
	}
	if strings.Contains(normalized, "photo") {
		return PhotoOnly, true
	}
	return "", false
}
