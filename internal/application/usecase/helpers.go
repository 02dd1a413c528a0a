package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s es requerido", domain.ErrValidation, field)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	return nil
}

// CleanText recorta y lleva el texto a NFC: así se guarda y así lo comparan los filtros.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeEmail forma canónica de un email (NFC, minúsculas, sin espacios).
func NormalizeEmail(email string) string {
	return strings.ToLower(CleanText(email))
}

func pageOf[T any](r search.Result[T]) dto.PageResponse {
	return dto.PageResponse{Page: r.Page, Size: r.Size, Total: r.Total, TotalPages: r.TotalPages()}
}

// storeUploads guarda los archivos en orden; si alguno falla descarta los ya guardados.
func storeUploads(ctx context.Context, blobs ports.BlobStore, log zerolog.Logger, uploads []ports.Upload) ([]string, error) {
	refs := make([]string, 0, len(uploads))
	for _, up := range uploads {
		if len(up.Data) == 0 {
			continue
		}
		ref, err := blobs.Store(ctx, up.Data, up.Name)
		if err != nil {
			discardBlobs(ctx, blobs, log, refs)
			return nil, fmt.Errorf("%w: guardar foto: %v", domain.ErrDependency, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discardBlobs elimina archivos sin propagar errores (solo log).
func discardBlobs(ctx context.Context, blobs ports.BlobStore, log zerolog.Logger, refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
			log.Warn().Err(err).Str("ref", ref).Msg("no se pudo eliminar archivo")
		}
	}
}
