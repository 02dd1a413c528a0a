package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/auth"
	"github.com/jhoicas/flota-api/internal/application/dto"
)

// AuthHandler maneja registro, login y recuperación de contraseña.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar empresa y administrador
// @Description  Crea la empresa y su primer usuario ADMIN en una transacción y devuelve la sesión.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Empresa y administrador"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RequestPasswordReset godoc
// @Summary      Solicitar recuperación de contraseña
// @Description  Genera un token de un solo uso (1h) y lo envía por correo.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      202   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.RequestPasswordReset(c.UserContext(), in); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{
		Message: "se envió un enlace de recuperación al correo",
	})
}

// ValidateResetToken godoc
// @Summary      Verificar token de recuperación
// @Tags         auth
// @Produce      json
// @Param        token  path  string  true  "Token"
// @Success      200    {object}  dto.TokenStatusResponse
// @Router       /api/auth/password-reset/{token} [get]
func (h *AuthHandler) ValidateResetToken(c *fiber.Ctx) error {
	valid, err := h.uc.ValidateResetToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenStatusResponse{Valid: valid})
}

// RedeemPasswordReset godoc
// @Summary      Restablecer contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PasswordResetConfirmRequest  true  "token, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset/confirm [post]
func (h *AuthHandler) RedeemPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetConfirmRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.RedeemPasswordReset(c.UserContext(), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}
