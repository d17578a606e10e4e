package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
)

// MonitoringHandler auditoría, actividad y alertas del tenant (protegido).
type MonitoringHandler struct {
	uc *monitoring.MonitoringUseCase
}

// NewMonitoringHandler construye el handler.
func NewMonitoringHandler(uc *monitoring.MonitoringUseCase) *MonitoringHandler {
	return &MonitoringHandler{uc: uc}
}

// ListAudit GET /api/audit: registro de auditoría.
func (h *MonitoringHandler) ListAudit(c *fiber.Ctx) error {
	var q dto.AuditQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.DefaultPage()
	since, err := timeQuery(c, "since")
	if err != nil {
		return nil
	}
	q.Since = since
	if err := check(c, &q); err != nil {
		return nil
	}
	out, err := h.uc.ListAudit(c.UserContext(), GetScope(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListActivity GET /api/activity
func (h *MonitoringHandler) ListActivity(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.ListActivity(c.UserContext(), GetScope(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListAlerts GET /api/alerts
func (h *MonitoringHandler) ListAlerts(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.ListAlerts(c.UserContext(), GetScope(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
