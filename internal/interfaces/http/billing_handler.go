package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// HeaderWebhookSecret cabecera con el secreto compartido de la pasarela.
const HeaderWebhookSecret = "X-Webhook-Secret"

// BillingHandler planes, suscripción y pagos.
type BillingHandler struct {
	uc            *billing.SubscriptionUseCase
	webhookSecret string
}

// NewBillingHandler construye el handler. Con webhookSecret vacío el webhook responde 503.
func NewBillingHandler(uc *billing.SubscriptionUseCase, webhookSecret string) *BillingHandler {
	return &BillingHandler{uc: uc, webhookSecret: webhookSecret}
}

// ListPlans GET /api/plans: planes disponibles.
func (h *BillingHandler) ListPlans(c *fiber.Ctx) error {
	out, err := h.uc.ListPlans(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Subscribe POST /api/subscription: suscribir el tenant a un plan.
func (h *BillingHandler) Subscribe(c *fiber.Ctx) error {
	var in dto.SubscribeRequest
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.Subscribe(c.UserContext(), GetScope(c), in, clientInfo(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current GET /api/subscription: suscripción vigente del tenant.
func (h *BillingHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext(), GetScope(c))
	return respondFound(c, out, err, "sin suscripción")
}

// ListPayments GET /api/payments
func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return nil
	}
	out, err := h.uc.ListPayments(c.UserContext(), GetScope(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PaymentWebhook POST /webhooks/payments: notificación de pago de la pasarela.
func (h *BillingHandler) PaymentWebhook(c *fiber.Ctx) error {
	if h.webhookSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "WEBHOOK_DISABLED", Message: "webhook no configurado"})
	}
	got := c.Get(HeaderWebhookSecret)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SECRET", Message: "secreto inválido"})
	}
	var in dto.PaymentNotification
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if len(in.Payload) == 0 {
		in.Payload = append([]byte(nil), c.Body()...)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
