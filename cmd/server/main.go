package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/siadin-id/siadin/internal/fixtures"
	internalserver "github.com/siadin-id/siadin/internal/server"
	"github.com/siadin-id/siadin/modules"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/permissions"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/application"
	"github.com/siadin-id/siadin/pkg/cache"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	root := &cobra.Command{
		Use:          "siadin",
		Short:        "Agency administration platform",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			app, pool, err := buildApplication(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()

			if conf.Prometheus.Enabled {
				app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
			}

			serverInstance, err := internalserver.Default(&internalserver.DefaultOptions{
				Logger:        conf.Logger(),
				Configuration: conf,
				Application:   app,
				Pool:          pool,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			log.Printf("listening on %s\n", conf.Origin)
			return serverInstance.Start(conf.SocketAddress)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			app, pool, err := buildApplication(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()
			return app.Migrations().Apply(cmd.Context(), pool)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply schema and create demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			app, pool, err := buildApplication(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := app.Migrations().Apply(cmd.Context(), pool); err != nil {
				return err
			}

			admin, err := app.Directory().PrincipalByID(cmd.Context(), fixtures.SystemAdminID)
			if err != nil {
				return err
			}
			agencyService := app.Service(&services.AgencyService{}).(*services.AgencyService)

			ctx := composables.WithPool(cmd.Context(), pool)
			created, err := agencyService.Create(ctx, &agency.CreateDTO{
				Name:             "Disnaker Aceh",
				ProvinceCode:     "11",
				RegencyCode:      "1101",
				OwnerPrincipalID: fixtures.OwnerID.String(),
			}, admin)
			if err != nil {
				return fmt.Errorf("seed agency: %w", err)
			}
			log.Printf("seeded agency %s (%s)\n", created.Name(), created.Code())
			return nil
		},
	}
}

func buildApplication(ctx context.Context, conf *configuration.Configuration) (application.Application, *pgxpool.Pool, error) {
	logger := conf.Logger()

	poolCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(poolCtx, conf.Database.Opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	var store cache.Store
	if conf.Cache.Backend == "redis" {
		store = cache.NewRedisStore(conf.Cache.RedisURL, logger)
	} else {
		store = cache.NewMemoryStore()
	}
	if conf.Prometheus.Enabled {
		store = metrics.InstrumentCache(conf.Cache.Backend, store)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:      pool,
		EventBus:  eventbus.NewEventPublisher(logger),
		Logger:    logger,
		Cache:     store,
		Geo:       fixtures.Geo(),
		Directory: fixtures.Directory(),
		RBAC:      permissions.Schema(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("load modules: %w", err)
	}
	return app, pool, nil
}
