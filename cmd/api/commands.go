package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetfin-backend/internal/config"
	"assetfin-backend/internal/infrastructure/db"
	"assetfin-backend/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the monthly valuation refresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := db.RunMigrations(cfg.MigrateURL(), cfg.Migrations.Path); err != nil {
				return err
			}
			v, dirty, err := db.MigrationVersion(cfg.MigrateURL(), cfg.Migrations.Path)
			if err != nil {
				return err
			}
			log.Info("migrations applied", logging.Any("version", v), logging.Bool("dirty", dirty))
			return nil
		},
	}
}

func newRefreshCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Record a fresh valuation for every active asset once, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			rep := a.job.RefreshAllValuations(ctx)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			if rep.Failed > 0 {
				return fmt.Errorf("refresh: %d of %d assets failed", rep.Failed, rep.Total)
			}
			return nil
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	var schedDone <-chan struct{}
	if a.scheduler != nil {
		schedDone = a.scheduler.Start(ctx)
	}

	addr := ":" + a.cfg.App.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", logging.String("addr", addr))
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.echo.Shutdown(sctx)
	if schedDone != nil {
		<-schedDone
	}
	return err
}
