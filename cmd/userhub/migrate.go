package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userhub/internal/store"
)

func migrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes del Credential Store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := store.Open(ctx, store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Migrate(ctx, db, cfg.Storage.Driver); err != nil {
				return err
			}
			v, err := store.MigrationVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied, version=%d\n", v)
			return nil
		},
	}
}
