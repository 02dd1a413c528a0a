// Command migrate aplica o muestra el estado de las migraciones embebidas.
//
//	go run ./cmd/migrate          # up
//	go run ./cmd/migrate status
package main

import (
	"context"
	"os"

	"github.com/jhoicas/flota-api/internal/infrastructure/postgres"
	"github.com/jhoicas/flota-api/pkg/config"
	"github.com/jhoicas/flota-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	switch cmd {
	case "up":
		err = postgres.Migrate(ctx, pool)
	case "status":
		err = postgres.MigrationStatus(ctx, pool)
	default:
		log.Error().Str("cmd", cmd).Msg("comando desconocido: use up o status")
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", cmd).Msg("migraciones ok")
}
