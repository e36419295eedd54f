package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
)

// FS stores documents in a local directory, for development and tests.
type FS struct {
	root   string
	logger *slog.Logger
}

func NewFS(root string, logger *slog.Logger) (*FS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if root == "" {
		return nil, errors.New("blob directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FS{root: root, logger: logger}, nil
}

func (s *FS) Put(_ context.Context, coupleID uuid.UUID, filename string, data []byte, _ string) (string, error) {
	key := ObjectPath(coupleID, filename)
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(full), err)
	}
	tmp := full + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit %s: %w", key, err)
	}
	s.logger.Info("blob.put", "backend", "fs", "key", key, "bytes", len(data))
	return key, nil
}

func (s *FS) Get(_ context.Context, objectPath string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("%w: object path %q", common.ErrInvalidInput, objectPath)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", objectPath, common.ErrNotFound)
	}
	return data, err
}
