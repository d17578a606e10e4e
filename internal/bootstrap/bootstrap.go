// Package bootstrap arma los casos de uso sobre un almacenamiento dado. Lo comparten la API,
// la CLI y los tests HTTP.
package bootstrap

import (
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/commerce"
	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/monitoring"
	"github.com/jhoicas/Gestion-api/internal/application/notification"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/application/sharing"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/lifecycle"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	httpRouter "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// Deps almacenamiento y adaptadores de salida.
type Deps struct {
	Repos   repository.Tx
	Tx      repository.TxRunner
	Config  *config.Config
	Policy  lifecycle.Policy // nil = AllowAll
	Metrics ports.Metrics    // nil = NopMetrics
	Mailer  ports.Mailer     // solo lo usa el worker
	Log     *logger.Logger
}

// Services casos de uso listos para usar.
type Services struct {
	Auth           *auth.AuthUseCase
	Tenants        *usecase.TenantUseCase
	Users          *usecase.UserUseCase
	Roles          *usecase.RoleUseCase
	Parties        *usecase.PartyUseCase
	Catalog        *usecase.CatalogUseCase
	Lifecycle      *commerce.Lifecycle
	Budgets        *commerce.BudgetUseCase
	Services       *commerce.ServiceUseCase
	Invoices       *commerce.InvoiceUseCase
	Schedules      *commerce.ScheduleUseCase
	Status         *commerce.StatusUseCase
	Shares         *sharing.ShareUseCase
	Gate           *confirmation.Gate
	Actions        *confirmation.ActionUseCase
	Templates      *notification.TemplateUseCase
	Queue          *notification.QueueUseCase
	Autoresponders *notification.AutoresponderUseCase
	Worker         *notification.Worker
	Subscriptions  *billing.SubscriptionUseCase
	Monitoring     *monitoring.MonitoringUseCase
}

// New construye todos los casos de uso.
func New(d Deps) *Services {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	s := &Services{}
	s.Monitoring = monitoring.NewMonitoringUseCase(d.Repos, log.Component("monitoring"))
	s.Queue = notification.NewQueueUseCase(d.Repos, cfg.Email.MaxAttempts)
	s.Templates = notification.NewTemplateUseCase(d.Repos)
	s.Autoresponders = notification.NewAutoresponderUseCase(d.Repos, s.Queue, log.Component("autoresponder"))
	s.Worker = notification.NewWorker(d.Repos, d.Mailer, s.Monitoring, metrics, notification.WorkerSettings{
		MaxAttempts:  cfg.Email.MaxAttempts,
		BackoffBase:  cfg.Email.BackoffBase,
		BackoffMax:   cfg.Email.BackoffMax,
		BatchSize:    cfg.Email.BatchSize,
		PollInterval: cfg.Email.PollInterval,
		StaleAfter:   cfg.Email.StaleAfter,
	}, log.Component("email-worker"))

	s.Lifecycle = commerce.NewLifecycle(d.Policy, metrics, s.Autoresponders, log.Component("lifecycle"))
	s.Gate = confirmation.NewGate(d.Repos, d.Tx, confirmation.Settings{
		EmailVerificationTTL: cfg.Confirmation.EmailVerificationTTL,
		PasswordResetTTL:     cfg.Confirmation.PasswordResetTTL,
		ActionTTL:            cfg.Confirmation.ActionTTL,
		PublicURL:            cfg.App.PublicURL,
	}, log.Component("confirmation"))

	s.Auth = auth.NewAuthUseCase(d.Repos, d.Tx, s.Gate, s.Queue, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	s.Tenants = usecase.NewTenantUseCase(d.Repos.Tenants())
	s.Users = usecase.NewUserUseCase(d.Repos, d.Tx)
	s.Roles = usecase.NewRoleUseCase(d.Repos, d.Tx)
	s.Parties = usecase.NewPartyUseCase(d.Repos.Parties())
	s.Catalog = usecase.NewCatalogUseCase(d.Repos.Catalog())

	s.Budgets = commerce.NewBudgetUseCase(d.Repos, d.Tx)
	s.Services = commerce.NewServiceUseCase(d.Repos, d.Tx)
	s.Invoices = commerce.NewInvoiceUseCase(d.Repos, d.Tx)
	s.Schedules = commerce.NewScheduleUseCase(d.Repos)
	s.Status = commerce.NewStatusUseCase(d.Repos, d.Tx, s.Lifecycle)
	s.Shares = sharing.NewShareUseCase(d.Repos, d.Tx, s.Lifecycle, metrics, sharing.Settings{
		DefaultTTL: cfg.Share.DefaultTTL,
		MaxTTL:     cfg.Share.MaxTTL,
		PublicURL:  cfg.App.PublicURL,
	}, log.Component("sharing"))
	s.Actions = confirmation.NewActionUseCase(s.Gate, d.Tx, s.Lifecycle, s.Queue, log.Component("confirmation"))
	s.Subscriptions = billing.NewSubscriptionUseCase(d.Repos, d.Tx, metrics, log.Component("billing"))
	return s
}

// RouterDeps dependencias del router HTTP.
func (s *Services) RouterDeps(cfg *config.Config) httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		AuthUC:          s.Auth,
		TenantUC:        s.Tenants,
		UserUC:          s.Users,
		RoleUC:          s.Roles,
		PartyUC:         s.Parties,
		CatalogUC:       s.Catalog,
		BudgetUC:        s.Budgets,
		ServiceUC:       s.Services,
		InvoiceUC:       s.Invoices,
		ScheduleUC:      s.Schedules,
		StatusUC:        s.Status,
		ShareUC:         s.Shares,
		ActionUC:        s.Actions,
		TemplateUC:      s.Templates,
		QueueUC:         s.Queue,
		AutoresponderUC: s.Autoresponders,
		SubscriptionUC:  s.Subscriptions,
		MonitoringUC:    s.Monitoring,
		JWTSecret:       cfg.JWT.Secret,
		WebhookSecret:   cfg.Payments.WebhookSecret,
	}
}

// Policy carga la política de transiciones del archivo configurado; sin archivo, AllowAll.
func Policy(cfg config.LifecycleConfig) (lifecycle.Policy, error) {
	if cfg.TransitionsFile == "" {
		return lifecycle.AllowAll{}, nil
	}
	rules, err := config.LoadTransitionRules(cfg.TransitionsFile)
	if err != nil {
		return nil, err
	}
	g, err := lifecycle.NewGraph(rules)
	if err != nil {
		return nil, fmt.Errorf("política de transiciones %s: %w", cfg.TransitionsFile, err)
	}
	return g, nil
}
