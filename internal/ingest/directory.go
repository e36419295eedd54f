package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

type FileResult struct {
	Path         string
	Document     *Document
	Deduplicated bool
	Err          string
}

type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

type ScanOptions struct {
	// DocumentType applies to files not filed under a document type directory.
	DocumentType constants.DocumentType
	SkipHidden   bool
	MaxBytes     int64
}

// ScanDirectory walks root and loads every supported file. Files whose
// content was already seen in this walk are reported as deduplicated and
// carry no document.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions, logger *slog.Logger) ([]FileResult, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []FileResult
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := LoadFile(path, DocumentTypeForPath(root, path, opts.DocumentType), opts.MaxBytes)
		if err != nil {
			logger.Warn("ingest.load_failed", "path", path, "error", err)
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if first, dup := seen[doc.HashHex]; dup {
			logger.Info("ingest.duplicate", "path", path, "same_as", first)
			results = append(results, FileResult{Path: path, Deduplicated: true})
			stats.Deduplicated++
			return nil
		}
		seen[doc.HashHex] = path
		results = append(results, FileResult{Path: path, Document: &doc})
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	logger.Info("ingest.scan.done", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}
