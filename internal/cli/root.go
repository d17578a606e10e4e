// Package cli comandos de operación de gestionctl: migraciones, mantenimiento de enlaces y
// tokens, worker de emails y administración de tenants de la plataforma.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/bootstrap"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/mailer"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// Runtime servicios listos para un comando.
type Runtime struct {
	Services *bootstrap.Services
	// Migrate aplica las migraciones pendientes; nil si el almacenamiento no las necesita.
	Migrate func(ctx context.Context) ([]string, error)
	Close   func()
}

// Opener construye el Runtime. Los tests lo reemplazan por uno en memoria.
type Opener func(ctx context.Context) (*Runtime, error)

// RootOptions flags globales.
type RootOptions struct {
	Format string // "text" | "json"
	Open   Opener
}

// ValidFormats formatos de salida admitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand comando raíz. open nil = PostgreSQL según la configuración del entorno.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenPostgres
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:           "gestionctl",
		Short:         "Operación de Gestion API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("formato %q inválido: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSharesCommand(opts))
	cmd.AddCommand(newTokensCommand(opts))
	cmd.AddCommand(newEmailsCommand(opts))
	cmd.AddCommand(newTenantsCommand(opts))
	cmd.AddCommand(newAlertsCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withRuntime abre el runtime, ejecuta fn y lo cierra.
func withRuntime(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := opts.Open(ctx)
	if err != nil {
		return err
	}
	if rt.Close != nil {
		defer rt.Close()
	}
	return fn(ctx, rt)
}

// OpenPostgres carga la configuración y conecta a PostgreSQL.
func OpenPostgres(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "gestionctl"})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	policy, err := bootstrap.Policy(cfg.Lifecycle)
	if err != nil {
		pool.Close()
		return nil, err
	}
	var sender ports.Mailer = mailer.NewLogMailer(log.Component("mailer"))
	if cfg.Email.SMTPEnabled() {
		sender = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	}
	svc := bootstrap.New(bootstrap.Deps{
		Repos:  postgres.NewStore(pool),
		Tx:     postgres.NewTxRunner(pool),
		Config: cfg,
		Policy: policy,
		Mailer: sender,
		Log:    log,
	})
	return &Runtime{
		Services: svc,
		Migrate: func(ctx context.Context) ([]string, error) {
			return postgres.Migrate(ctx, pool, log.Component("migrate"))
		},
		Close: pool.Close,
	}, nil
}
