package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/captcha"
	"github.com/mselser95/restock-sniper/internal/checkout"
	"github.com/mselser95/restock-sniper/internal/circuitbreaker"
	"github.com/mselser95/restock-sniper/internal/items"
	"github.com/mselser95/restock-sniper/internal/monitor"
	"github.com/mselser95/restock-sniper/internal/notify"
	"github.com/mselser95/restock-sniper/internal/offercache"
	"github.com/mselser95/restock-sniper/internal/proxypool"
	"github.com/mselser95/restock-sniper/internal/qualify"
	"github.com/mselser95/restock-sniper/internal/queue"
	"github.com/mselser95/restock-sniper/internal/session"
	"github.com/mselser95/restock-sniper/internal/storage"
	"github.com/mselser95/restock-sniper/internal/supervisor"
	"github.com/mselser95/restock-sniper/pkg/cache"
	"github.com/mselser95/restock-sniper/pkg/config"
	"github.com/mselser95/restock-sniper/pkg/healthprobe"
	"github.com/mselser95/restock-sniper/pkg/httpclient"
	"github.com/mselser95/restock-sniper/pkg/httpserver"
)

// checkoutQueueSize bounds the monitor-to-checkout hand-off. The checkout
// worker drains one offer at a time, so a small buffer is plenty.
const checkoutQueueSize = 64

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	offerCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	itemPool, err := setupItemPool(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup item pool: %w", err)
	}

	proxies, err := setupProxyManager(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup proxy manager: %w", err)
	}

	offers, err := setupOfferSource(cfg, offerCache, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup offer source: %w", err)
	}

	qualifier, err := qualify.New(&qualify.Config{
		FirstPartySellers: cfg.FirstPartySellers,
		Logger:            logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup qualifier: %w", err)
	}

	checkoutQueue, err := queue.New(checkoutQueueSize, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup checkout queue: %w", err)
	}

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	solver := setupSolver(cfg, logger)
	eventHub := httpserver.NewEventHub(logger)

	sup, err := setupSupervisor(cfg, logger, itemPool, proxies, offers, qualifier, checkoutQueue, solver, store)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup supervisor: %w", err)
	}

	checkoutWorker, err := setupCheckout(cfg, logger, itemPool, checkoutQueue, solver, store, eventHub)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup checkout worker: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Pipeline:      sup,
		Events:        eventHub,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		eventHub:      eventHub,
		offerCache:    offerCache,
		itemPool:      itemPool,
		proxies:       proxies,
		offers:        offers,
		qualifier:     qualifier,
		checkoutQueue: checkoutQueue,
		supervisor:    sup,
		checkout:      checkoutWorker,
		storage:       store,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupItemPool(cfg *config.Config, logger *zap.Logger) (*items.Pool, error) {
	monitored, err := config.LoadItems(cfg.ItemsFile)
	if err != nil {
		return nil, err
	}

	return items.NewPool(monitored, logger)
}

func setupProxyManager(cfg *config.Config, logger *zap.Logger) (*proxypool.Manager, error) {
	groups, err := config.LoadProxyGroups(cfg.ProxiesFile)
	if err != nil {
		return nil, err
	}

	return proxypool.New(&proxypool.Config{
		Groups: groups,
		Logger: logger,
	})
}

func setupOfferSource(cfg *config.Config, offerCache cache.Cache, logger *zap.Logger) (*offercache.Source, error) {
	seed, err := config.LoadOfferIDs(cfg.OfferIDFile)
	if err != nil {
		return nil, err
	}

	return offercache.New(&offercache.Config{
		Seed:   seed,
		Cache:  offerCache,
		Logger: logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupSolver(cfg *config.Config, logger *zap.Logger) captcha.Solver {
	if cfg.CaptchaSolverURL == "" {
		return nil
	}

	return captcha.NewClient(cfg.CaptchaSolverURL, cfg.CaptchaSolveTimeout, logger)
}

func setupSupervisor(
	cfg *config.Config,
	logger *zap.Logger,
	itemPool *items.Pool,
	proxies *proxypool.Manager,
	offers *offercache.Source,
	qualifier *qualify.Qualifier,
	checkoutQueue *queue.CheckoutQueue,
	solver captcha.Solver,
	store storage.Storage,
) (*supervisor.Supervisor, error) {
	validator, err := session.New(cfg.StoreBaseURL, cfg.SessionPath, logger)
	if err != nil {
		return nil, err
	}

	clients := func(proxyURL string) (monitor.Fetcher, error) {
		return httpclient.New(&httpclient.Config{
			ProxyURL:       proxyURL,
			TimeoutSeconds: int(cfg.RequestTimeout.Seconds()),
			Logger:         logger,
		})
	}

	factory := func(slot int) (supervisor.Runner, error) {
		breaker, err := circuitbreaker.New(&circuitbreaker.Config{
			Threshold:    cfg.FailThreshold,
			FailStatuses: cfg.FailStatuses,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}

		return monitor.New(&monitor.Config{
			Slot:               slot,
			Items:              itemPool,
			Proxies:            proxies,
			Offers:             offers,
			Qualifier:          qualifier,
			Queue:              checkoutQueue,
			Breaker:            breaker,
			Solver:             solver,
			Session:            validator,
			Clients:            clients,
			BaseURL:            cfg.StoreBaseURL,
			ListingPath:        cfg.ListingPath,
			OfferJSONPath:      cfg.OfferJSONPath,
			Interval:           cfg.MonitorInterval,
			SessionMaxAttempts: cfg.SessionMaxAttempts,
			Logger:             logger,
		})
	}

	return supervisor.New(&supervisor.Config{
		Factory:        factory,
		Proxies:        proxies,
		Storage:        store,
		SwitchInterval: cfg.ProxySwitchInterval,
		Logger:         logger,
	})
}

func setupCheckout(
	cfg *config.Config,
	logger *zap.Logger,
	itemPool *items.Pool,
	checkoutQueue *queue.CheckoutQueue,
	solver captcha.Solver,
	store storage.Storage,
	eventHub *httpserver.EventHub,
) (*checkout.Worker, error) {
	// The checkout client stays off the rotating proxies; a purchase
	// should not ride an IP that monitoring may have burned.
	client, err := httpclient.New(&httpclient.Config{
		TimeoutSeconds: int(cfg.RequestTimeout.Seconds()),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return checkout.New(&checkout.Config{
		In:             checkoutQueue.Out(),
		Client:         client,
		Solver:         solver,
		Storage:        store,
		Sink:           notify.Multi{notify.NewLogSink(logger), eventHub},
		Items:          itemPool,
		BaseURL:        cfg.StoreBaseURL,
		ReservePath:    cfg.ReservePath,
		CommitPath:     cfg.CommitPath,
		CaptchaRetries: cfg.CheckoutCaptchaRetries,
		StopAfterFirst: cfg.StopAfterFirstPurchase,
		Logger:         logger,
	})
}
