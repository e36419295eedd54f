package constants

import "strings"

const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// FileTypes holds the document formats the text extractor understands.
var FileTypes = []string{PDF, TEXT}

// AllowedExtensions holds the default allowed file extensions for document import.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
	"md":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF or TEXT for a supported extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "md":
		return TEXT
	}
	return ""
}

// ContentTypeFor is used when uploading source documents to the blob store.
func ContentTypeFor(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "txt":
		return "text/plain; charset=utf-8"
	case "md":
		return "text/markdown; charset=utf-8"
	}
	return "application/octet-stream"
}
