package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/checkout"
	"github.com/mselser95/restock-sniper/internal/items"
	"github.com/mselser95/restock-sniper/internal/offercache"
	"github.com/mselser95/restock-sniper/internal/proxypool"
	"github.com/mselser95/restock-sniper/internal/qualify"
	"github.com/mselser95/restock-sniper/internal/queue"
	"github.com/mselser95/restock-sniper/internal/storage"
	"github.com/mselser95/restock-sniper/internal/supervisor"
	"github.com/mselser95/restock-sniper/pkg/cache"
	"github.com/mselser95/restock-sniper/pkg/config"
	"github.com/mselser95/restock-sniper/pkg/healthprobe"
	"github.com/mselser95/restock-sniper/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	eventHub      *httpserver.EventHub
	offerCache    cache.Cache
	itemPool      *items.Pool
	proxies       *proxypool.Manager
	offers        *offercache.Source
	qualifier     *qualify.Qualifier
	checkoutQueue *queue.CheckoutQueue
	supervisor    *supervisor.Supervisor
	checkout      *checkout.Worker
	storage       storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
