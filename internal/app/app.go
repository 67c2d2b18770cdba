// Package app wires storage, the backend client and the stores into the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssbags/storefront/internal/api"
	"github.com/ssbags/storefront/internal/cart"
	"github.com/ssbags/storefront/internal/catalog"
	"github.com/ssbags/storefront/internal/checkout"
	"github.com/ssbags/storefront/internal/cli"
	"github.com/ssbags/storefront/internal/config"
	"github.com/ssbags/storefront/internal/event"
	"github.com/ssbags/storefront/internal/session"
	"github.com/ssbags/storefront/internal/storage"
	"github.com/ssbags/storefront/internal/storage/file"
	"github.com/ssbags/storefront/internal/storage/memory"
	redisstore "github.com/ssbags/storefront/internal/storage/redis"
	"github.com/ssbags/storefront/pkg/health"
	"github.com/ssbags/storefront/pkg/httpclient"
	"github.com/ssbags/storefront/pkg/tracing"
)

var (
	_ session.Authenticator = (*api.Client)(nil)
	_ catalog.ProductLister = (*api.Client)(nil)
	_ session.CartClearer   = (*cart.Service)(nil)
	_ checkout.Cart         = (*cart.Service)(nil)
	_ checkout.Session      = (*session.Service)(nil)
)

// ServiceName identifies the client in logs and traces.
const ServiceName = "storefront"

// App owns the storage handle, the backend client and the stores.
type App struct {
	logger         *slog.Logger
	store          storage.Store
	cli            *cli.CLI
	shutdownTracer tracing.Shutdown
}

// NewApp opens storage, restores the stored cart and sessions and builds the
// CLI. Command output goes to out, user-facing errors to errOut.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) (*App, error) {
	tcfg := tracing.DefaultConfig(ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.Enabled = cfg.OTELEnabled
	tcfg.Endpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	logger.Debug("storage opened", slog.String("backend", cfg.Storage))
	cleanup := func() {
		_ = store.Close()
		_ = shutdownTracer(ctx)
	}

	// Backend client with circuit breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxConnsPerHost: httpclient.DefaultConfig().MaxConnsPerHost,
	})
	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "storefront-backend",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
	client, err := api.New(cbClient, cfg.APIBase, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	// Stores.
	events := event.NewPublisher(logger)
	loaded := catalog.NewLoaded(client)
	sources := catalog.Chain{loaded}
	var sample catalog.Static
	if cfg.SampleCatalog {
		sample = catalog.Sample()
		sources = append(sources, sample)
	}
	cartService := cart.NewService(store, sources, events, logger)
	sessionService := session.NewService(store, client, cartService, logger)

	if err := cartService.Load(ctx); err != nil {
		cleanup()
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	if err := sessionService.Load(ctx); err != nil {
		cleanup()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	platform, err := checkout.ParsePlatform(cfg.Platform)
	if err != nil {
		cleanup()
		return nil, err
	}
	checkoutService := checkout.NewService(cartService, sessionService, newOpener(cfg.Opener, out), events, cfg.WhatsAppNumber, logger)

	// Health checks.
	registry := health.NewRegistry(cfg.HTTPTimeout)
	registry.RegisterCritical("storage", store.Ping)
	registry.RegisterCritical("backend", client.Ping)

	c := cli.New(cli.Deps{
		Cart:         cartService,
		Session:      sessionService,
		Checkout:     checkoutService,
		API:          client,
		Products:     loaded,
		Sample:       sample,
		Events:       events,
		Health:       registry,
		BreakerState: cbClient.StateName,
		Gatherer:     prometheus.DefaultGatherer,
		Platform:     platform,
		Logger:       logger,
	}, out, errOut)

	return &App{
		logger:         logger,
		store:          store,
		cli:            c,
		shutdownTracer: shutdownTracer,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		client, err := redisstore.NewClient(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisstore.New(client, cfg.RedisPrefix, cfg.StateTTLDuration()), nil
	default:
		store, err := file.New(cfg.StateDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open state dir: %w", err)
		}
		return store, nil
	}
}

// newOpener selects how deep links are opened. "print" writes them to out;
// anything else is a command line, empty meaning the system default.
func newOpener(line string, out io.Writer) checkout.Opener {
	if strings.EqualFold(strings.TrimSpace(line), "print") {
		return checkout.WriterOpener{W: out}
	}
	return checkout.NewCommandOpener(line)
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	return a.cli.Run(ctx, args)
}

// Close releases storage and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if err := a.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}
	if len(errs) > 0 {
		a.logger.Error("close failed", slog.String("error", errors.Join(errs...).Error()))
	}
	return errors.Join(errs...)
}
