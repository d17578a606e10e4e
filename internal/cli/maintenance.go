package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				if rt.Migrate == nil {
					return fmt.Errorf("el almacenamiento no admite migraciones")
				}
				applied, err := rt.Migrate(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(applied))
				for _, name := range applied {
					rows = append(rows, []string{name})
				}
				if applied == nil {
					applied = []string{}
				}
				return output(cmd.OutOrStdout(), opts.Format, map[string]any{"applied": applied}, []string{"MIGRACIÓN"}, rows)
			})
		},
	}
}

func newSharesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "shares", Short: "Enlaces públicos"}
	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Borra los enlaces vencidos hace más de --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				n, err := rt.Services.Shares.PruneExpired(ctx, time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), opts.Format, map[string]int64{"deleted": n},
					[]string{"BORRADOS"}, [][]string{{strconv.FormatInt(n, 10)}})
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "antigüedad mínima del vencimiento")
	cmd.AddCommand(prune)
	return cmd
}

func newTokensCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tokens", Short: "Tokens de confirmación"}
	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Borra los tokens de confirmación vencidos hace más de --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				n, err := rt.Services.Gate.PruneExpired(ctx, time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), opts.Format, map[string]int64{"deleted": n},
					[]string{"BORRADOS"}, [][]string{{strconv.FormatInt(n, 10)}})
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "antigüedad mínima del vencimiento")
	cmd.AddCommand(prune)
	return cmd
}

func newEmailsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "emails", Short: "Cola de emails"}
	var once bool
	work := &cobra.Command{
		Use:   "work",
		Short: "Procesa la cola de emails (un lote con --once, o hasta SIGINT)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *Runtime) error {
				if !once {
					ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
					defer stop()
					return rt.Services.Worker.Run(ctx)
				}
				res, err := rt.Services.Worker.ProcessBatch(ctx)
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), opts.Format, res,
					[]string{"RECLAMADOS", "ENVIADOS", "REINTENTOS", "FALLIDOS"},
					[][]string{{strconv.Itoa(res.Claimed), strconv.Itoa(res.Sent), strconv.Itoa(res.Retried), strconv.Itoa(res.Failed)}})
			})
		},
	}
	work.Flags().BoolVar(&once, "once", false, "procesa un solo lote y termina")
	cmd.AddCommand(work)
	return cmd
}
