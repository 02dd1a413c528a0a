package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/infrastructure/storage"
)

func TestFileStore_GuardaLeeYBorra(t *testing.T) {
	ctx := context.Background()
	s := storage.NewFileStore(afero.NewMemMapFs())

	ref, err := s.Store(ctx, []byte("jpeg"), "Foto Frontal.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	data, err := s.Read(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, s.Delete(ctx, ref))
	_, err = s.Read(ctx, ref)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// idempotente
	assert.NoError(t, s.Delete(ctx, ref))
}

func TestFileStore_ExtensionInvalidaSeDescarta(t *testing.T) {
	s := storage.NewFileStore(afero.NewMemMapFs())

	ref, err := s.Store(context.Background(), []byte("x"), "archivo.ex$e")
	require.NoError(t, err)
	assert.NotContains(t, ref, ".")
}

func TestFileStore_RechazaReferenciasFueraDelStore(t *testing.T) {
	s := storage.NewFileStore(afero.NewMemMapFs())

	_, err := s.Read(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewDiskStore_EscribeEnElDirectorio(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewDiskStore(dir)
	require.NoError(t, err)

	ref, err := s.Store(context.Background(), []byte("png"), "a.png")
	require.NoError(t, err)

	exists, err := afero.Exists(afero.NewOsFs(), dir+"/"+ref)
	require.NoError(t, err)
	assert.True(t, exists)
}
