package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/api"
	"github.com/vietanh2810/camp-animal-economy/internal/config"
	"github.com/vietanh2810/camp-animal-economy/internal/db"
	"github.com/vietanh2810/camp-animal-economy/internal/logger"
	"github.com/vietanh2810/camp-animal-economy/internal/realtime"
	"github.com/vietanh2810/camp-animal-economy/internal/repository"
	"github.com/vietanh2810/camp-animal-economy/internal/repository/dao"
	"github.com/vietanh2810/camp-animal-economy/internal/scheduler"
	"github.com/vietanh2810/camp-animal-economy/internal/service"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sched atomic.Pointer[scheduler.DemandScheduler]
	conf, err := config.LoadAndWatch(configPath, func(updated *config.AppConfig) {
		if s := sched.Load(); s != nil {
			s.SetInterval(updated.Cron.Interval)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer zap.L().Sync()

	if conf.API.Environment == "prod" && conf.NeedsSecrets() {
		client, err := config.NewSSMClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize parameter store -> %w", err)
		}
		if err = config.ResolveSecrets(ctx, conf, client); err != nil {
			return fmt.Errorf("failed to resolve secrets -> %w", err)
		}
	}

	postgresDB, err := db.OpenPostgres(conf.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer db.Close(postgresDB)

	if err = dao.InitTables(postgresDB, conf.Notify.Channel); err != nil {
		return fmt.Errorf("failed to initialize tables -> %w", err)
	}

	hub := realtime.NewHub(conf.Notify.SubscriberBuffer)
	defer hub.Close()

	marketDAO := dao.NewMarketDAO(postgresDB)
	repo := repository.NewMarketRepository(marketDAO)
	svc := service.NewMarketService(repo, hub, conf.Market)

	if conf.Market.Seed {
		if err = svc.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed market -> %w", err)
		}
	}

	listener := dao.NewMarketListener(
		conf.Postgres.DSN(),
		conf.Notify.Channel,
		conf.Notify.ReconnectInterval,
		marketDAO,
		func(item dao.MarketItem) {
			svc.Publish(repository.DaoToDomain(item))
		},
	)
	go listener.Run(ctx)

	demand := scheduler.NewDemandScheduler(svc, conf.Cron.Interval, conf.Cron.Timeout)
	demand.Start(ctx)
	sched.Store(demand)

	s := api.NewServer(conf, svc)
	srv := &http.Server{
		Addr:    ":" + s.Config.API.Port,
		Handler: s.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	if err = demand.Stop(shutdownCtx); err != nil {
		zap.L().Error("scheduler shutdown failed", zap.Error(err))
	}

	return nil
}
