package ports

import "context"

// BlobStore almacenamiento de archivos binarios (fotos). La referencia devuelta es opaca
// y es lo único que el dominio persiste.
type BlobStore interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
	Read(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// Upload archivo recibido para almacenar.
type Upload struct {
	Name string
	Data []byte
}
