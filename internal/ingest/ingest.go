package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

// DefaultMaxBytes caps one source document.
const DefaultMaxBytes = 25 << 20

// Document is a source file read into memory for extraction.
type Document struct {
	Path         string
	Filename     string
	DocumentType constants.DocumentType
	Data         []byte
	HashHex      string
}

// AllowedExt checks if a file extension is one the text extractor reads.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// LoadFile reads one document. maxBytes <= 0 means DefaultMaxBytes.
func LoadFile(path string, docType constants.DocumentType, maxBytes int64) (Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, err
	}
	if !AllowedExt(filepath.Ext(abs)) {
		return Document{}, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	f, err := os.Open(abs)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", abs, err)
	}
	if int64(len(data)) > maxBytes {
		return Document{}, fmt.Errorf("%s is larger than %d bytes", abs, maxBytes)
	}
	sum := sha256.Sum256(data)
	return Document{
		Path:         abs,
		Filename:     filepath.Base(abs),
		DocumentType: docType,
		Data:         data,
		HashHex:      hex.EncodeToString(sum[:]),
	}, nil
}

// DocumentTypeForPath reads the document type from the first directory
// under root ("inbox/contract/kong.pdf" -> contract). Files directly under
// root, or under an unrecognised directory, get fallback.
func DocumentTypeForPath(root, path string, fallback constants.DocumentType) constants.DocumentType {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fallback
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return fallback
	}
	if dt, ok := constants.ParseDocumentType(parts[0]); ok {
		return dt
	}
	return fallback
}
