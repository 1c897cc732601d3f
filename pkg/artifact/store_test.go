package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	root := t.TempDir()
	store, err := NewStoreFromConfig(Config{Driver: "local", Path: root})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Driver())

	obj, err := store.Put(context.Background(), Key("user-1", "factura-F-2024-001.pdf"), "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/user-1/factura-F-2024-001.pdf", obj.Key)
	assert.Equal(t, int64(8), obj.Size)

	data, err := os.ReadFile(filepath.Join(root, "invoices", "user-1", "factura-F-2024-001.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)

	obj, err := store.Put(context.Background(), "../../escape.pdf", "application/pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape.pdf", obj.Key)
	assert.FileExists(t, filepath.Join(root, "escape.pdf"))

	_, err = store.Put(context.Background(), "  ", "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNullStore(t *testing.T) {
	store, err := NewStoreFromConfig(Config{Driver: "none"})
	require.NoError(t, err)

	obj, err := store.Put(context.Background(), "invoices/a/b.pdf", "application/pdf", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "none", obj.Driver)
	assert.Empty(t, obj.Location)
}

func TestNewStoreFromConfigErrors(t *testing.T) {
	_, err := NewStoreFromConfig(Config{Driver: "local"})
	assert.Error(t, err)
	_, err = NewStoreFromConfig(Config{Driver: "s3"})
	assert.Error(t, err)
	_, err = NewStoreFromConfig(Config{Driver: "ftp"})
	assert.Error(t, err)

	store, err := NewStoreFromConfig(Config{Driver: "s3", S3: S3Options{Bucket: "invoices", Region: "eu-west-1"}})
	require.NoError(t, err)
	assert.Equal(t, "s3", store.Driver())
}
