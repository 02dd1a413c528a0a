package http

import (
	"path"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/ports"
)

// PhotoHandler sirve los archivos guardados en el blob store.
type PhotoHandler struct {
	blobs ports.BlobStore
}

func NewPhotoHandler(blobs ports.BlobStore) *PhotoHandler {
	return &PhotoHandler{blobs: blobs}
}

// Get godoc
// @Summary      Descargar foto
// @Tags         photos
// @Produce      octet-stream
// @Param        ref  path  string  true  "Referencia de la foto"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/photos/{ref} [get]
func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	return sendBlob(c, h.blobs, c.Params("ref"))
}

func sendBlob(c *fiber.Ctx, blobs ports.BlobStore, ref string) error {
	data, err := blobs.Read(c.UserContext(), ref)
	if err != nil {
		return err
	}
	if ext := path.Ext(ref); ext != "" {
		c.Type(ext[1:])
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(data)
}
