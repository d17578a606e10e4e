package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/notification"
)

// NotificationHandler plantillas, cola de emails y autorespondedores (protegido).
type NotificationHandler struct {
	templates      *notification.TemplateUseCase
	queue          *notification.QueueUseCase
	autoresponders *notification.AutoresponderUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(templates *notification.TemplateUseCase, queue *notification.QueueUseCase, autoresponders *notification.AutoresponderUseCase) *NotificationHandler {
	return &NotificationHandler{templates: templates, queue: queue, autoresponders: autoresponders}
}

// CreateTemplate POST /api/email-templates: crear plantilla de email.
func (h *NotificationHandler) CreateTemplate(c *fiber.Ctx) error {
	var in dto.CreateTemplateRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.templates.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetTemplate GET /api/email-templates/:id
func (h *NotificationHandler) GetTemplate(c *fiber.Ctx) error {
	out, err := h.templates.Get(c.UserContext(), GetScope(c), c.Params("id"))
	return respondFound(c, out, err, "plantilla no encontrada")
}

// ListTemplates GET /api/email-templates
func (h *NotificationHandler) ListTemplates(c *fiber.Ctx) error {
	out, err := h.templates.List(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PreviewTemplate POST /api/email-templates/{id}/preview: renderizar plantilla con datos de prueba.
func (h *NotificationHandler) PreviewTemplate(c *fiber.Ctx) error {
	var in dto.RenderRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.templates.Preview(c.UserContext(), GetScope(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Enqueue POST /api/emails: encolar email desde una plantilla.
func (h *NotificationHandler) Enqueue(c *fiber.Ctx) error {
	var in dto.SendEmailRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.queue.Enqueue(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// ListQueue GET /api/emails?status=&limit=&offset=
func (h *NotificationHandler) ListQueue(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.queue.List(c.UserContext(), GetScope(c), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateAutoresponder POST /api/autoresponders: crear autorespondedor para un evento de estado.
func (h *NotificationHandler) CreateAutoresponder(c *fiber.Ctx) error {
	var in dto.CreateAutoresponderRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.autoresponders.Create(c.UserContext(), GetScope(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAutoresponders GET /api/autoresponders
func (h *NotificationHandler) ListAutoresponders(c *fiber.Ctx) error {
	out, err := h.autoresponders.List(c.UserContext(), GetScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
