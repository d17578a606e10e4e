package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// AuthHandler maneja registro de tenants, login, verificación y restablecimiento de contraseña.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register POST /api/auth/register: registrar tenant con su usuario administrador.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterTenantRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.RegisterTenant(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login POST /api/auth/login: iniciar sesión.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VerifyEmail POST /public/verify-email/{token}: verificar email con el token recibido.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.uc.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequestPasswordReset POST /api/auth/password-reset: solicitar restablecimiento de contraseña.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if err := h.uc.RequestPasswordReset(c.UserContext(), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// ResetPassword POST /public/reset-password: restablecer contraseña con el token recibido.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if err := h.uc.ResetPassword(c.UserContext(), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
