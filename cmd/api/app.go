package main

import (
	"context"
	"fmt"

	httpadp "assetfin-backend/internal/adapter/http"
	"assetfin-backend/internal/adapter/middleware"
	"assetfin-backend/internal/adapter/provider"
	"assetfin-backend/internal/adapter/repository/mysql"
	"assetfin-backend/internal/config"
	"assetfin-backend/internal/infrastructure/cache"
	"assetfin-backend/internal/infrastructure/db"
	"assetfin-backend/internal/infrastructure/logging"
	"assetfin-backend/internal/infrastructure/messaging"
	"assetfin-backend/internal/infrastructure/metrics"
	assetuc "assetfin-backend/internal/usecase/asset"
	loanuc "assetfin-backend/internal/usecase/loan"
	"assetfin-backend/internal/usecase/refresh"
	scenariouc "assetfin-backend/internal/usecase/scenario"
	valuationuc "assetfin-backend/internal/usecase/valuation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type app struct {
	cfg       *config.Config
	log       logging.Logger
	db        *gorm.DB
	rdb       *redis.Client
	pub       messaging.Publisher
	echo      *echo.Echo
	job       *refresh.Job
	scheduler *refresh.Scheduler
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, pub: messaging.NopPublisher{}}

	if cfg.Migrations.OnStartup {
		if err := db.RunMigrations(cfg.MigrateURL(), cfg.Migrations.Path); err != nil {
			return nil, err
		}
	}
	pool := db.DefaultPool()
	pool.MaxOpenConns = cfg.MySQL.MaxOpenConns
	pool.MaxIdleConns = cfg.MySQL.MaxIdleConns
	pool.SlowThreshold = cfg.MySQL.SlowThreshold
	if a.db, err = db.OpenGorm(cfg.MySQLDSN(), log, pool); err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	if a.rdb, err = cache.OpenRedis(ctx, cfg.Redis); err != nil {
		a.Close()
		return nil, err
	}
	if len(cfg.Kafka.Brokers) > 0 {
		a.pub = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	assets := mysql.NewAssetRepository(a.db)
	loans := mysql.NewLoanRepository(a.db)
	vals := mysql.NewValuationRepository(a.db)
	tx := mysql.NewGormUoW(a.db)

	prov := provider.NewClient(provider.Config{
		EquipmentURL: cfg.Provider.EquipmentURL,
		VehicleURL:   cfg.Provider.VehicleURL,
		EquipmentKey: cfg.Provider.EquipmentKey,
		VehicleKey:   cfg.Provider.VehicleKey,
		Timeout:      cfg.Provider.Timeout,
	}, log)

	valuations := valuationuc.NewUsecase(vals,
		valuationuc.WithProvider(prov),
		valuationuc.WithCache(cache.NewSeriesCache(a.rdb, cfg.Cache.SeriesTTL, cache.WithLogger(log.Named("cache")))),
		valuationuc.WithLogger(log.Named("valuation")),
	)
	assetUC := assetuc.NewUsecase(assets, tx,
		assetuc.WithRecorder(valuations),
		assetuc.WithPublisher(a.pub),
		assetuc.WithMetrics(m),
		assetuc.WithLogger(log.Named("asset")),
	)
	loanUC := loanuc.NewUsecase(loans, tx,
		loanuc.WithPublisher(a.pub),
		loanuc.WithMetrics(m),
		loanuc.WithLogger(log.Named("loan")),
	)
	scenarioUC := scenariouc.NewUsecase(assets, loans, scenariouc.WithLogger(log.Named("scenario")))

	a.job = refresh.NewJob(assets, valuations,
		refresh.WithPublisher(a.pub),
		refresh.WithMetrics(m),
		refresh.WithLogger(log.Named("refresh")),
	)
	if cfg.Refresh.Enabled {
		a.scheduler = refresh.NewScheduler(a.job, cfg.Refresh.Day, cfg.Refresh.Hour,
			refresh.WithSchedulerLogger(log.Named("scheduler")))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(log))

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"mysql": func(ctx context.Context) error {
				sqlDB, err := a.db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() },
		}),
		Assets:     httpadp.NewAssetHandler(assetUC),
		Loans:      httpadp.NewLoanHandler(loanUC),
		Valuations: httpadp.NewValuationHandler(valuations),
		Scenarios:  httpadp.NewScenarioHandler(scenarioUC),
		Metrics:    m.Handler(),
	}, middleware.IdempotencyMiddleware(a.rdb, cfg.IdempotencyTTL(), log))
	a.echo = e

	return a, nil
}

func (a *app) Close() {
	if c, ok := a.pub.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("closing publisher", logging.Err(err))
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
