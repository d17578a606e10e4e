package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

func newTenantsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tenants", Short: "Tenants de la plataforma"}

	var page dto.PageRequest
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				page.DefaultPage()
				out, err := rt.Services.Tenants.List(ctx, page)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(out.Items))
				for _, t := range out.Items {
					rows = append(rows, []string{t.ID, t.Name, strconv.FormatBool(t.IsActive), t.CreatedAt.Format(time.RFC3339)})
				}
				return output(cmd.OutOrStdout(), opts.Format, out, []string{"ID", "NOMBRE", "ACTIVO", "CREADO"}, rows)
			})
		},
	}
	list.Flags().IntVar(&page.Limit, "limit", 20, "máximo de filas")
	list.Flags().IntVar(&page.Offset, "offset", 0, "desplazamiento")

	var in dto.RegisterTenantRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un tenant con su administrador",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				out, err := rt.Services.Auth.RegisterTenant(ctx, in)
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), opts.Format, out, []string{"TENANT", "ADMIN"},
					[][]string{{out.Tenant.ID, out.Admin.Email}})
			})
		},
	}
	create.Flags().StringVar(&in.TenantName, "name", "", "nombre del tenant")
	create.Flags().StringVar(&in.AdminEmail, "admin-email", "", "email del administrador")
	create.Flags().StringVar(&in.AdminPassword, "admin-password", "", "contraseña del administrador")
	create.Flags().StringVar(&in.AdminName, "admin-name", "", "nombre del administrador")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("admin-email")
	_ = create.MarkFlagRequired("admin-password")

	cmd.AddCommand(list, create, setActiveCommand(opts, "activate", true), setActiveCommand(opts, "deactivate", false))
	return cmd
}

func setActiveCommand(opts *RootOptions, use string, active bool) *cobra.Command {
	short := "Reactiva un tenant"
	if !active {
		short = "Desactiva un tenant: sus usuarios dejan de poder operar"
	}
	return &cobra.Command{
		Use:   use + " <tenant-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				if err := rt.Services.Tenants.SetActive(ctx, args[0], active); err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), opts.Format, map[string]any{"id": args[0], "active": active},
					[]string{"ID", "ACTIVO"}, [][]string{{args[0], strconv.FormatBool(active)}})
			})
		},
	}
}

func newAlertsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "alerts", Short: "Alertas de monitoreo"}
	var page dto.PageRequest
	system := &cobra.Command{
		Use:   "system",
		Short: "Lista las alertas de sistema (sin tenant)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				page.DefaultPage()
				out, err := rt.Services.Monitoring.ListSystemAlerts(ctx, page)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(out))
				for _, a := range out {
					rows = append(rows, []string{a.CreatedAt.Format(time.RFC3339), a.Severity, a.Category, a.Title})
				}
				return output(cmd.OutOrStdout(), opts.Format, out, []string{"FECHA", "SEVERIDAD", "CATEGORÍA", "TÍTULO"}, rows)
			})
		},
	}
	system.Flags().IntVar(&page.Limit, "limit", 20, "máximo de filas")
	system.Flags().IntVar(&page.Offset, "offset", 0, "desplazamiento")
	cmd.AddCommand(system)
	return cmd
}
