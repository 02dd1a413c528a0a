package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/usecase"
)

// APIKeyHandler gestión de las API keys del usuario autenticado.
type APIKeyHandler struct {
	uc *usecase.APIKeyUseCase
}

func NewAPIKeyHandler(uc *usecase.APIKeyUseCase) *APIKeyHandler {
	return &APIKeyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear API key
// @Description  La clave completa solo se devuelve en esta respuesta.
// @Tags         api-keys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateAPIKeyRequest  true  "Nombre"
// @Success      201   {object}  dto.APIKeyCreatedResponse
// @Router       /api/api-keys [post]
func (h *APIKeyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAPIKeyRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar API keys propias
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.APIKeyResponse
// @Router       /api/api-keys [get]
func (h *APIKeyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Activar API key
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la key"
// @Success      200  {object}  dto.APIKeyResponse
// @Router       /api/api-keys/{id}/activate [patch]
func (h *APIKeyHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.SetActive(c.UserContext(), GetEmail(c), c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar API key
// @Tags         api-keys
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la key"
// @Success      200  {object}  dto.APIKeyResponse
// @Router       /api/api-keys/{id}/deactivate [patch]
func (h *APIKeyHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.SetActive(c.UserContext(), GetEmail(c), c.Params("id"), false)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar API key
// @Tags         api-keys
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la key"
// @Success      204
// @Router       /api/api-keys/{id} [delete]
func (h *APIKeyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetEmail(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
