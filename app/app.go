package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/leshachaplin/eventrelay/app/waiter"
	"github.com/leshachaplin/eventrelay/internal/config"
	"github.com/leshachaplin/eventrelay/internal/domain"
	appServer "github.com/leshachaplin/eventrelay/internal/server/http"
	"github.com/leshachaplin/eventrelay/internal/service"
	"github.com/leshachaplin/eventrelay/internal/upstream/meta"
	"github.com/leshachaplin/eventrelay/internal/upstream/webhook"
)

const shutdownTimeout = 30 * time.Second

type LoadConfigFn func() (config.Config, error)

type App struct {
	cfg      config.Config
	logger   zerolog.Logger
	server   *appServer.Server
	waiter   waiter.Waiter
	ctx      context.Context
	cancelFn context.CancelFunc
}

func New(loadConfigFn LoadConfigFn) *App {
	ctx, cancelFn := context.WithCancel(context.Background())
	cfg, err := loadConfigFn()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := NewZeroLogger(os.Stdout, Level(cfg.LogLevel))

	w := waiter.NewWaiter(ctx, cancelFn)

	return &App{
		cfg:      cfg,
		logger:   logger,
		waiter:   w,
		ctx:      ctx,
		cancelFn: cancelFn,
	}
}

func (a *App) Start() {
	defer a.cancelFn()

	if a.cfg.Meta.PixelID == "" || a.cfg.Meta.AccessToken == "" {
		a.logger.Warn().Msg("META_PIXEL_ID or META_ACCESS_TOKEN is not set, event relay will answer 500")
	}
	if a.cfg.Webhook.URL == "" {
		a.logger.Warn().Msg("MAKE_WEBHOOK_URL is not set, webhook forwarder will answer 500")
	}

	// One client for every upstream; per-call deadlines come from the
	// upstream configs.
	httpClient := &http.Client{}

	relay := service.NewRelay(
		meta.NewClient(a.cfg.Meta, httpClient),
		service.RelayConfig{
			Blocked:       domain.NewBlockSet(a.cfg.BlockedEvents...),
			TestEventCode: a.cfg.Meta.TestEventCode,
		},
		a.logger.With().Str("component", "relay").Logger(),
	)
	forwarder := service.NewForwarder(
		webhook.NewClient(a.cfg.Webhook, httpClient),
		a.logger.With().Str("component", "forwarder").Logger(),
	)

	handler := appServer.NewHandler(relay, forwarder, a.logger)
	a.server = appServer.New(a.cfg.Addr, handler, appServer.NewCORS(a.cfg.AllowOrigins), a.logger)

	a.waitForServer()

	if err := a.waiter.Wait(); err != nil {
		a.logger.Fatal().Err(err).Msg("App crash.")
	}
}

func (a *App) Stop() {
	a.cancelFn()
}

func (a *App) waitForServer() {
	a.waiter.Add(func(ctx context.Context) error {
		defer a.logger.Debug().Msg("server has been shutdown")

		group, gCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			defer a.logger.Debug().Msg("public server exited")
			a.logger.Info().Str("addr", a.cfg.Addr).Msg("starting server")
			err := a.server.ServePublic()
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		group.Go(func() error {
			<-gCtx.Done()
			a.logger.Debug().Msg("shutting down the server")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := a.server.ShutdownPublic(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("error while shutting down the server")
			}
			return nil
		})

		return group.Wait()
	})
}
