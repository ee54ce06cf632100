// Command citasctl runs maintenance tasks against the citas database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/repository"
	"github.com/noah-isme/citas-api/internal/service"
	"github.com/noah-isme/citas-api/pkg/cache"
	"github.com/noah-isme/citas-api/pkg/config"
	"github.com/noah-isme/citas-api/pkg/database"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "citasctl",
		Short:         "Maintenance commands for the citas booking database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(migrateCmd(), importCmd())
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the availability and appointment tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()
			if err := database.Migrate(cmd.Context(), env.db); err != nil {
				return err
			}
			env.logger.Info("schema applied")
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Generate availability windows from a YAML rule file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			reqs, err := parseRules(f)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d reglas validas\n", len(reqs))
				return nil
			}

			env, err := setup()
			if err != nil {
				return err
			}
			defer env.close()
			return runImport(cmd, env, reqs)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML rule file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate the file without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, env *environment, reqs []service.BulkAvailabilityRequest) error {
	var cacheSvc *service.CacheService
	if env.cfg.Cache.Enabled {
		client, err := cache.NewRedis(env.cfg.Redis)
		if err != nil {
			env.logger.Warn("redis unavailable, availability cache will expire on its own", zap.Error(err))
		} else {
			defer client.Close()
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(client), nil, env.cfg.Cache.TTL, env.logger, true)
		}
	}
	svc := service.NewAvailabilityService(repository.NewAvailabilityRepository(env.db), cacheSvc, validator.New(), env.logger,
		service.AvailabilityConfig{BulkMaxDays: env.cfg.Booking.BulkMaxDays, CacheTTL: env.cfg.Cache.TTL})

	var failed int
	for i, req := range reqs {
		result, err := svc.CreateBulk(cmd.Context(), req)
		switch {
		case err == nil:
		case errors.Is(err, appErrors.ErrPartialBulkFailure):
			failed += len(result.Failed)
		default:
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "regla %d: psicologo %d, %d creadas, %d fallidas\n",
			i+1, req.PractitionerID, len(result.Created), len(result.Failed))
	}
	if failed > 0 {
		return fmt.Errorf("%d fechas no se pudieron crear", failed)
	}
	return nil
}

type environment struct {
	cfg    *config.Config
	db     *sqlx.DB
	logger *zap.Logger
}

func setup() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &environment{cfg: cfg, db: db, logger: logr}, nil
}

func (e *environment) close() {
	_ = e.db.Close()
	_ = e.logger.Sync()
}
