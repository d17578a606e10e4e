package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errBadRequest respuesta ya escrita; el handler solo debe retornar nil.
var errBadRequest = errors.New("petición inválida")

// bindJSON decodifica y valida el body. Si falla escribe la respuesta 400 y retorna errBadRequest.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return errBadRequest
	}
	return check(c, out)
}

func check(c *fiber.Ctx, out any) error {
	if err := validate.Struct(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
		return errBadRequest
	}
	return nil
}

// validationMessage resume los errores de campo: "email: email; password: min".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// pageFrom lee limit/offset con valores por defecto.
func pageFrom(c *fiber.Ctx) (dto.PageRequest, error) {
	var p dto.PageRequest
	if err := c.QueryParser(&p); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit y offset deben ser enteros"})
		return p, errBadRequest
	}
	p.DefaultPage()
	if err := check(c, &p); err != nil {
		return p, err
	}
	return p, nil
}

// timeQuery lee un parámetro RFC 3339 opcional.
func timeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: name + " debe ser RFC 3339"})
		return nil, errBadRequest
	}
	return &t, nil
}

func clientInfo(c *fiber.Ctx) dto.ClientInfo {
	return dto.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// respondFound responde 200 con out, 404 si es nil.
func respondFound[T any](c *fiber.Ctx, out *T, err error, notFound string) error {
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound})
	}
	return c.JSON(out)
}

// noContent responde 204 o el error mapeado.
func noContent(c *fiber.Ctx, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
