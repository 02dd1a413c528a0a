// Package storage guarda las fotos como archivos sobre un afero.Fs (disco en producción, memoria en tests).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain"
)

var _ ports.BlobStore = (*FileStore)(nil)

// refPattern uuid + extensión opcional; cualquier otra cosa se rechaza (evita path traversal).
var refPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,5})?$`)

// FileStore blob store plano: un archivo por referencia.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore usa fsys tal cual.
func NewFileStore(fsys afero.Fs) *FileStore {
	return &FileStore{fs: fsys}
}

// NewDiskStore crea dir si no existe y confina el store a ese directorio.
func NewDiskStore(dir string) (*FileStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return NewFileStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Store guarda data y devuelve la referencia generada; conserva la extensión de suggestedName.
func (s *FileStore) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := uuid.NewString() + extension(suggestedName)
	tmp := ref + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", ref, err)
	}
	if err := s.fs.Rename(tmp, ref); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("storage: publicar %s: %w", ref, err)
	}
	return ref, nil
}

func (s *FileStore) Read(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !refPattern.MatchString(ref) {
		return nil, fmt.Errorf("%w: archivo %q", domain.ErrNotFound, ref)
	}
	data, err := afero.ReadFile(s.fs, ref)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: archivo %q", domain.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", ref, err)
	}
	return data, nil
}

// Delete es idempotente: una referencia inexistente no es error.
func (s *FileStore) Delete(_ context.Context, ref string) error {
	if !refPattern.MatchString(ref) {
		return nil
	}
	if err := s.fs.Remove(ref); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", ref, err)
	}
	return nil
}

func extension(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
