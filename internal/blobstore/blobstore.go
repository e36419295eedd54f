// Package blobstore keeps imported source documents under
// {coupleID}/{filename}.
package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
)

type Store interface {
	Put(ctx context.Context, coupleID uuid.UUID, filename string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, objectPath string) ([]byte, error)
}

// ObjectPath is the deterministic key of a document. Only the base name of
// filename is kept so a crafted name cannot escape the couple's prefix.
func ObjectPath(coupleID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "document"
	}
	return coupleID.String() + "/" + name
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg common.BlobConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "minio":
		m, err := NewMinio(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return m, nil
	case "fs", "":
		return NewFS(cfg.LocalDir, logger)
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
}
