package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/repository/jsonfile"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/repository/memory"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/logging"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/server"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	policy, err := roster.ParseMergePolicy(cfg.Roster.MergePolicy)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	base := jsonfile.NewBaseSource(fs, cfg.Roster.BasePath)

	var (
		overlay roster.OverlaySource
		tx      roster.TransactionManager
	)
	switch cfg.Roster.Overlay.Driver {
	case config.OverlayDriverFile:
		fileOverlay := jsonfile.NewOverlaySource(fs, cfg.Roster.Overlay.Path)
		if err := fileOverlay.EnsureFile(); err != nil {
			return fmt.Errorf("prepare overlay file: %w", err)
		}
		overlay = fileOverlay
	case config.OverlayDriverPostgres:
		dbPool, err := pg.NewPool(ctx, cfg.Database, logger.Named("db"))
		if err != nil {
			return fmt.Errorf("initialize database pool: %w", err)
		}
		defer dbPool.Close()

		txManager := pg.NewTransactionManager(dbPool, pg.WithTransactionLogger(logger.Named("db")))
		overlay = postgres.NewOverlayRepository(dbPool, txManager)
		tx = txManager
	case config.OverlayDriverMemory:
		overlay = memory.NewOverlaySource()
	default:
		return fmt.Errorf("unsupported overlay driver %q", cfg.Roster.Overlay.Driver)
	}

	store := roster.NewLayeredStore(base, overlay,
		roster.WithMergePolicy(policy),
		roster.WithStoreLogger(logger.Named("store")),
	)
	svc := roster.NewService(store, nil, tx, roster.WithLogger(logger.Named("roster")))

	grpcServer := server.New(cfg.Server.ListenAddr, svc,
		server.WithMetricsAddr(cfg.Server.MetricsAddr),
		server.WithLogger(logger.Named("grpc")),
	)

	logger.Info("starting roster service",
		zap.String("listen_addr", cfg.Server.ListenAddr),
		zap.String("overlay_driver", cfg.Roster.Overlay.Driver),
		zap.String("merge_policy", string(policy)),
	)
	return grpcServer.Run(ctx)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
