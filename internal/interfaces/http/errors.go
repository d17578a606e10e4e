package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// alerter registra alertas de monitoreo. Lo implementa *monitoring.MonitoringUseCase.
type alerter interface {
	Raise(ctx context.Context, tenantID, severity, category, title, message string, metadata map[string]any)
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Orden relevante: ErrEmailAlreadyExists y ErrUserNotFound antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrInvalidAccess, fiber.StatusNotFound, "INVALID_ACCESS", "enlace inválido o expirado"},
	{domain.ErrInvalidTransition, fiber.StatusUnprocessableEntity, "INVALID_TRANSITION", "transición de estado no permitida"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrTenantInactive, fiber.StatusForbidden, "TENANT_INACTIVE", "la cuenta está desactivada"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrPersistence, fiber.StatusInternalServerError, "PERSISTENCE", "no se pudo guardar el cambio"},
}

// respondError traduce un error de dominio a la respuesta HTTP. Los errores no reconocidos
// se propagan al ErrorHandler de la app, que responde 500 sin exponer el detalle.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			if m.status >= fiber.StatusInternalServerError {
				return fiber.NewError(m.status, msg)
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	return err
}

// ErrorHandler respuesta final para errores no manejados por los handlers. Los 5xx se
// registran y generan una alerta de sistema con el tenant de la petición si lo hay.
func ErrorHandler(alerts alerter, log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		code := "INTERNAL"
		message := "error interno"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			if status < fiber.StatusInternalServerError {
				code = "HTTP_ERROR"
				message = fe.Message
			} else if fe.Message != "" && fe.Message != fiber.ErrInternalServerError.Message {
				message = fe.Message
			}
		}
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", GetRequestID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Msg("error interno en petición")
			if alerts != nil {
				alerts.Raise(c.UserContext(), GetTenantID(c), entity.SeverityCritical, entity.CategorySystem,
					"error interno HTTP", c.Method()+" "+c.Path(),
					map[string]any{"status": status, "request_id": GetRequestID(c)})
			}
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
	}
}
