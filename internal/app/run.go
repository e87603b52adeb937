package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("store", a.cfg.StoreBaseURL),
		zap.Int("items", a.itemPool.Len()),
		zap.Int("proxy-groups", a.proxies.GroupCount()),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Bool("stop-after-first-purchase", a.cfg.StopAfterFirstPurchase))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Start the checkout consumer before any producer can queue an offer
	err := a.checkout.Start(a.ctx)
	if err != nil {
		return err
	}

	return a.supervisor.Start(a.ctx)
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.checkout.Done():
		a.logger.Info("first-purchase-committed")
	case <-a.supervisor.Done():
		a.logger.Info("monitoring-finished")
		// No producers remain; closing the queue lets checkout drain
		// whatever was already queued and exit.
		a.checkoutQueue.Close()
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
