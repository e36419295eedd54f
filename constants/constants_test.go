package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizePackage(t *testing.T) {
	tests := []struct {
		in   string
		want PackageType
		ok   bool
	}{
		{"Photo + Video", PhotoPlusVideo, true},
		{"photography only", PhotoOnly, true},
		{"photo_video", PhotoPlusVideo, true},
		{"Collection 3 with Videography", PhotoPlusVideo, true},
		{"  ", "", false},
		{"albums", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizePackage(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDocumentType(t *testing.T) {
	dt, ok := ParseDocumentType("extras_quote")
	assert.True(t, ok)
	assert.Equal(t, DocExtrasQuote, dt)

	_, ok = ParseDocumentType("invoice")
	assert.False(t, ok)
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, TEXT, MapExtToFormat("txt"))
	assert.Equal(t, "", MapExtToFormat(".heic"))
}
