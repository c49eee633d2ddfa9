package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/userhub/internal/config"
	"github.com/dropDatabas3/userhub/internal/http/server"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
)

func main() {
	// .env opcional; en producción las variables vienen del entorno
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:           "userhub",
		Short:         "Servicio de cuentas de usuario (registro, sesión, perfil)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", envOr("CONFIG_PATH", "config.yaml"), "Ruta al YAML de configuración (opcional)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			ServiceName: cfg.App.Name,
			Version:     server.Version,
			File:        cfg.Log.File,
			MaxAge:      cfg.Log.MaxAge,
		})
		return cfg, nil
	}

	root.AddCommand(serveCmd(load), migrateCmd(load), userCmd(load))

	err := root.ExecuteContext(context.Background())
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type loader func() (*config.Config, error)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
