package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userhub/internal/domain"
	"github.com/dropDatabas3/userhub/internal/http/server"
)

func userCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Operaciones administrativas sobre usuarios",
	}

	var role string
	promote := &cobra.Command{
		Use:   "promote <email>",
		Short: "Asigna un rol (user|admin); refresca la sesión si está viva",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			app, err := server.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			u, err := app.Services.Admin.SetRole(ctx, args[0], role)
			if err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) role=%s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
	promote.Flags().StringVar(&role, "role", domain.RoleAdmin, "Rol a asignar: user|admin")

	cmd.AddCommand(promote)
	return cmd
}
