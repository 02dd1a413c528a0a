package http

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain"
)

const formPhoto = "photo"

// UserHandler administración de usuarios de la empresa y perfil propio.
type UserHandler struct {
	uc    *usecase.UserUseCase
	blobs ports.BlobStore
}

func NewUserHandler(uc *usecase.UserUseCase, blobs ports.BlobStore) *UserHandler {
	return &UserHandler{uc: uc, blobs: blobs}
}

// ── Administración ────────────────────────────────────────────────────────────

// Create godoc
// @Summary      Crear usuario en la empresa
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateUserRequest  true  "Usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetEmail(c), companySelection(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar usuarios de la empresa
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name       query  string  false  "Contiene"
// @Param        email      query  string  false  "Contiene"
// @Param        role       query  string  false  "ADMIN, OPERADOR o VISUALIZADOR"
// @Param        active     query  bool    false  "Estado"
// @Param        sort_by    query  string  false  "name, email, role, createdAt"
// @Param        direction  query  string  false  "ASC o DESC"
// @Param        page       query  int     false  "Página desde 0"
// @Param        size       query  int     false  "Tamaño (máx. 100)"
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/users/search [get]
func (h *UserHandler) Search(c *fiber.Ctx) error {
	criteria, err := userCriteria(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Search(c.UserContext(), GetEmail(c), companySelection(c), criteria)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListCompany godoc
// @Summary      Usuarios de la propia empresa (cualquier rol)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name       query  string  false  "Contiene"
// @Param        email      query  string  false  "Contiene"
// @Param        role       query  string  false  "ADMIN, OPERADOR o VISUALIZADOR"
// @Param        active     query  bool    false  "Estado"
// @Param        sort_by    query  string  false  "name, email, role, createdAt"
// @Param        direction  query  string  false  "ASC o DESC"
// @Param        page       query  int     false  "Página desde 0"
// @Param        size       query  int     false  "Tamaño (máx. 100)"
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/users/company [get]
func (h *UserHandler) ListCompany(c *fiber.Ctx) error {
	criteria, err := userCriteria(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ListCompany(c.UserContext(), GetEmail(c), companySelection(c), criteria)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SearchAll godoc
// @Summary      Usuarios de todas las empresas (solo ADMIN)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name       query  string  false  "Contiene"
// @Param        email      query  string  false  "Contiene"
// @Param        role       query  string  false  "ADMIN, OPERADOR o VISUALIZADOR"
// @Param        active     query  bool    false  "Estado"
// @Param        sort_by    query  string  false  "name, email, role, createdAt"
// @Param        direction  query  string  false  "ASC o DESC"
// @Param        page       query  int     false  "Página desde 0"
// @Param        size       query  int     false  "Tamaño (máx. 100)"
// @Success      200  {object}  dto.UserListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/all [get]
func (h *UserHandler) SearchAll(c *fiber.Ctx) error {
	criteria, err := userCriteria(c)
	if err != nil {
		return err
	}
	out, err := h.uc.SearchAll(c.UserContext(), GetEmail(c), criteria)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Info godoc
// @Summary      Datos y permisos de un usuario
// @Description  Admite Bearer o X-API-Key. Sin email responde por el usuario autenticado; consultar a otro requiere ADMIN.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     ApiKeyAuth
// @Param        body  body  dto.UserInfoRequest  false  "Email a consultar"
// @Success      200   {object}  dto.UserInfoResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/public/users/info [post]
func (h *UserHandler) Info(c *fiber.Ctx) error {
	var in dto.UserInfoRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Info(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Nombre y email"
// @Success      200   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ChangeRole godoc
// @Summary      Cambiar rol
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.ChangeRoleRequest  true  "Rol"
// @Success      200   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id}/role [patch]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var in dto.ChangeRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.ChangeRole(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"), in.Role)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Activate godoc
// @Summary      Activar usuario
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/{id}/activate [patch]
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Desactivar usuario
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/deactivate [patch]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	out, err := h.uc.SetActive(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"), active)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Eliminar usuario
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Remove(c *fiber.Ctx) error {
	if err := h.uc.Remove(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Perfil propio ─────────────────────────────────────────────────────────────

// Profile godoc
// @Summary      Perfil del usuario autenticado
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Router       /api/profile [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	out, err := h.uc.Profile(c.UserContext(), GetEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Permissions godoc
// @Summary      Permisos del usuario autenticado
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserInfoResponse
// @Router       /api/profile/permissions [get]
func (h *UserHandler) Permissions(c *fiber.Ctx) error {
	out, err := h.uc.Info(c.UserContext(), GetEmail(c), dto.UserInfoRequest{})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateProfile godoc
// @Summary      Actualizar nombre
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateProfileRequest  true  "Nombre"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateEmail godoc
// @Summary      Cambiar email
// @Description  Devuelve un token nuevo: el anterior queda ligado al email viejo.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateEmailRequest  true  "Nuevo email y contraseña actual"
// @Success      200   {object}  dto.UpdateEmailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/profile/email [put]
func (h *UserHandler) UpdateEmail(c *fiber.Ctx) error {
	var in dto.UpdateEmailRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateEmail(c.UserContext(), GetEmail(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ChangePassword godoc
// @Summary      Cambiar contraseña
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ChangePasswordRequest  true  "Contraseñas"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetEmail(c), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// SetNotifications godoc
// @Summary      Preferencia de notificaciones por correo
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.NotificationsRequest  true  "enabled"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/profile/notifications [put]
func (h *UserHandler) SetNotifications(c *fiber.Ctx) error {
	var in dto.NotificationsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.SetNotifications(c.UserContext(), GetEmail(c), in.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UploadPhoto godoc
// @Summary      Subir foto de perfil
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        photo  formData  file  true  "Imagen"
// @Success      200    {object}  dto.UserResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/profile/photo [post]
func (h *UserHandler) UploadPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile(formPhoto)
	if err != nil {
		return fmt.Errorf("%w: falta el archivo %q", domain.ErrValidation, formPhoto)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("abrir foto: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("leer foto: %w", err)
	}
	out, err := h.uc.UploadPhoto(c.UserContext(), GetEmail(c), ports.Upload{Name: fh.Filename, Data: data})
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Photo godoc
// @Summary      Descargar foto de perfil
// @Tags         profile
// @Produce      octet-stream
// @Security     BearerAuth
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/profile/photo [get]
func (h *UserHandler) Photo(c *fiber.Ctx) error {
	ref, err := h.uc.PhotoOf(c.UserContext(), GetEmail(c))
	if err != nil {
		return err
	}
	return sendBlob(c, h.blobs, ref)
}

// DeletePhoto godoc
// @Summary      Eliminar foto de perfil
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Router       /api/profile/photo [delete]
func (h *UserHandler) DeletePhoto(c *fiber.Ctx) error {
	out, err := h.uc.DeletePhoto(c.UserContext(), GetEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
