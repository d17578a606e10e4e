package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/application/notification"
	"github.com/jhoicas/Gestion-api/internal/application/sharing"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	TenantUC        *usecase.TenantUseCase
	UserUC          *usecase.UserUseCase
	RoleUC          *usecase.RoleUseCase
	PartyUC         *usecase.PartyUseCase
	CatalogUC       *usecase.CatalogUseCase
	BudgetUC        *commerce.BudgetUseCase
	ServiceUC       *commerce.ServiceUseCase
	InvoiceUC       *commerce.InvoiceUseCase
	ScheduleUC      *commerce.ScheduleUseCase
	StatusUC        *commerce.StatusUseCase
	ShareUC         *sharing.ShareUseCase
	ActionUC        *confirmation.ActionUseCase
	TemplateUC      *notification.TemplateUseCase
	QueueUC         *notification.QueueUseCase
	AutoresponderUC *notification.AutoresponderUseCase
	SubscriptionUC  *billing.SubscriptionUseCase
	MonitoringUC    *monitoring.MonitoringUseCase
	JWTSecret       string
	WebhookSecret   string
}

// AppConfig configuración de Fiber compartida por la API y los tests. Immutable copia los
// parámetros de ruta y el body: los casos de uso guardan esos strings más allá del handler.
func AppConfig(name string, errorHandler fiber.ErrorHandler) fiber.Config {
	return fiber.Config{
		AppName:      name,
		Immutable:    true,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: errorHandler,
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC)
	publicHandler := NewPublicHandler(deps.ShareUC, deps.ActionUC)
	billingHandler := NewBillingHandler(deps.SubscriptionUC, deps.WebhookSecret)

	// Enlaces públicos (sin sesión; el token es la autorización)
	public := app.Group("/public")
	public.Get("/budgets/view/:token", publicHandler.ViewBudget)
	public.Post("/budgets/view/:token/approve", publicHandler.ApproveBudget)
	public.Post("/budgets/view/:token/reject", publicHandler.RejectBudget)
	public.Get("/invoices/view/:token", publicHandler.ViewInvoice)
	public.Post("/confirm/:token", publicHandler.Confirm)
	public.Post("/verify-email/:token", authHandler.VerifyEmail)
	public.Post("/reset-password", authHandler.ResetPassword)

	// Pasarela de pagos (secreto compartido)
	app.Post("/webhooks/payments", billingHandler.PaymentWebhook)

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/password-reset", authHandler.RequestPasswordReset)
	api.Get("/plans", billingHandler.ListPlans)

	// Rutas protegidas (requieren Bearer Token y tenant activo)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireActiveTenant(deps.TenantUC))
	perm := func(p string) fiber.Handler { return RequirePermission(p, deps.RoleUC) }

	admin := NewAdminHandler(deps.TenantUC, deps.UserUC, deps.RoleUC)
	protected.Get("/me/permissions", admin.MyPermissions)
	protected.Get("/tenant", admin.GetTenant)
	protected.Delete("/tenant", perm(entity.PermTenantManage), admin.DeleteTenant)

	users := protected.Group("/users", perm(entity.PermUsersManage))
	users.Post("/", admin.CreateUser)
	users.Get("/", admin.ListUsers)
	users.Get("/:id", admin.GetUser)
	users.Post("/:id/roles", admin.AssignRole)

	roles := protected.Group("/roles", perm(entity.PermUsersManage))
	roles.Post("/", admin.CreateRole)
	roles.Get("/", admin.ListRoles)
	roles.Post("/:id/permissions", admin.GrantPermission)
	protected.Get("/permissions", perm(entity.PermUsersManage), admin.ListPermissions)

	// Clientes y proveedores
	for path, kind := range map[string]entity.PartyKind{"/customers": entity.PartyCustomer, "/providers": entity.PartyProvider} {
		h := NewPartyHandler(deps.PartyUC, kind)
		g := protected.Group(path, perm(entity.PermPartiesManage))
		g.Post("/", h.Create)
		g.Get("/", h.List)
		g.Get("/code/:code", h.GetByCode)
		g.Get("/:id", h.GetByID)
		g.Put("/:id/common-data", h.UpdateCommonData)
		g.Put("/:id/contact", h.UpdateContact)
		g.Put("/:id/address", h.UpdateAddress)
		g.Delete("/:id", h.Delete)
	}

	// Catálogo
	catalog := NewCatalogHandler(deps.CatalogUC)
	protected.Get("/units", catalog.ListUnits)
	protected.Post("/units", perm(entity.PermCatalogManage), catalog.CreateUnit)
	protected.Get("/categories", catalog.ListCategories)
	protected.Post("/categories", perm(entity.PermCatalogManage), catalog.CreateCategory)
	protected.Get("/products", catalog.ListProducts)
	protected.Get("/products/:id", catalog.GetProduct)
	protected.Post("/products", perm(entity.PermCatalogManage), catalog.CreateProduct)

	// Comercial: CRUD, estado, historial y enlaces públicos
	budgets := protected.Group("/budgets", perm(entity.PermBudgetsManage))
	budgetHandler := NewBudgetHandler(deps.BudgetUC)
	budgets.Post("/", budgetHandler.Create)
	budgets.Get("/", budgetHandler.List)
	budgets.Get("/code/:code", budgetHandler.GetByCode)
	budgets.Get("/:id", budgetHandler.GetByID)
	budgets.Delete("/:id", budgetHandler.Delete)

	services := protected.Group("/services", perm(entity.PermServicesManage))
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services.Post("/", serviceHandler.Create)
	services.Get("/", serviceHandler.List)
	services.Get("/code/:code", serviceHandler.GetByCode)
	services.Get("/:id", serviceHandler.GetByID)
	services.Delete("/:id", serviceHandler.Delete)

	invoices := protected.Group("/invoices", perm(entity.PermInvoicesManage))
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Delete("/:id", invoiceHandler.Delete)

	schedules := protected.Group("/schedules", perm(entity.PermSchedulesManage))
	scheduleHandler := NewScheduleHandler(deps.ScheduleUC)
	schedules.Post("/", scheduleHandler.Create)
	schedules.Get("/", scheduleHandler.List)
	schedules.Get("/:id", scheduleHandler.GetByID)

	groups := map[lifecycle.Kind]fiber.Router{
		lifecycle.KindBudget:   budgets,
		lifecycle.KindService:  services,
		lifecycle.KindInvoice:  invoices,
		lifecycle.KindSchedule: schedules,
	}
	for kind, g := range groups {
		h := NewStatusHandler(deps.StatusUC, deps.ActionUC, kind)
		g.Post("/:id/status", perm(entity.PermStatusChange), h.ChangeStatus)
		g.Get("/:id/history", h.History)
		if kind == lifecycle.KindBudget || kind == lifecycle.KindService {
			g.Post("/:id/status/confirmation", perm(entity.PermStatusChange), h.RequestConfirmation)
		}
	}
	for kind, g := range map[lifecycle.ShareKind]fiber.Router{lifecycle.ShareBudget: budgets, lifecycle.ShareInvoice: invoices} {
		h := NewShareHandler(deps.ShareUC, kind)
		g.Post("/:id/shares", perm(entity.PermSharesManage), h.Issue)
		g.Get("/:id/shares", perm(entity.PermSharesManage), h.List)
		g.Delete("/:id/shares/:shareId", perm(entity.PermSharesManage), h.Revoke)
	}

	// Comunicaciones
	notifications := NewNotificationHandler(deps.TemplateUC, deps.QueueUC, deps.AutoresponderUC)
	emailsPerm := perm(entity.PermEmailsManage)
	protected.Post("/email-templates", emailsPerm, notifications.CreateTemplate)
	protected.Get("/email-templates", emailsPerm, notifications.ListTemplates)
	protected.Get("/email-templates/:id", emailsPerm, notifications.GetTemplate)
	protected.Post("/email-templates/:id/preview", emailsPerm, notifications.PreviewTemplate)
	protected.Post("/emails", emailsPerm, notifications.Enqueue)
	protected.Get("/emails", emailsPerm, notifications.ListQueue)
	protected.Post("/autoresponders", emailsPerm, notifications.CreateAutoresponder)
	protected.Get("/autoresponders", emailsPerm, notifications.ListAutoresponders)

	// Suscripción
	protected.Get("/subscription", billingHandler.Current)
	protected.Post("/subscription", perm(entity.PermBillingManage), billingHandler.Subscribe)
	protected.Get("/payments", perm(entity.PermBillingManage), billingHandler.ListPayments)

	// Monitoreo
	monitoringHandler := NewMonitoringHandler(deps.MonitoringUC)
	protected.Get("/audit", perm(entity.PermAuditRead), monitoringHandler.ListAudit)
	protected.Get("/activity", perm(entity.PermAuditRead), monitoringHandler.ListActivity)
	protected.Get("/alerts", perm(entity.PermAuditRead), monitoringHandler.ListAlerts)
}
