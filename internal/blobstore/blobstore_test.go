package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
)

func TestObjectPath(t *testing.T) {
	id := uuid.MustParse("6f1c2c4e-2b7a-4f6e-9a55-0c4c1f3e2d10")
	assert.Equal(t, id.String()+"/kong-contract.pdf", ObjectPath(id, "kong-contract.pdf"))
	assert.Equal(t, id.String()+"/passwd", ObjectPath(id, "../../etc/passwd"))
	assert.Equal(t, id.String()+"/scan.pdf", ObjectPath(id, `C:\Users\me\scan.pdf`))
	assert.Equal(t, id.String()+"/document", ObjectPath(id, ""))
}

func TestFS_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(dir, nil)
	require.NoError(t, err)

	id := uuid.New()
	key, err := s.Put(context.Background(), id, "kong-contract.pdf", []byte("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, ObjectPath(id, "kong-contract.pdf"), key)

	onDisk, err := os.ReadFile(filepath.Join(dir, id.String(), "kong-contract.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(onDisk))

	got, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), got)

	_, err = s.Get(context.Background(), id.String()+"/missing.pdf")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = s.Get(context.Background(), "../outside")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), common.BlobConfig{Backend: "fs", LocalDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FS{}, s)

	_, err = Open(context.Background(), common.BlobConfig{Backend: "s3"}, nil)
	assert.Error(t, err)
}
