package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/monitor"
	"github.com/mselser95/restock-sniper/internal/proxypool"
	"github.com/mselser95/restock-sniper/internal/storage"
)

// defaultPollInterval is how often the rotation loop rechecks whether the
// proxy-group switch interval elapsed.
const defaultPollInterval = time.Second

// Runner is a monitor worker from the supervisor's point of view.
type Runner interface {
	Run(ctx context.Context) *monitor.Result
	Slot() int
}

// WorkerFactory builds a worker bound to a proxy slot. Called once per slot
// at startup and again for every replacement.
type WorkerFactory func(slot int) (Runner, error)

// Supervisor keeps one monitor worker per proxy slot alive. A worker ending
// FAILED is replaced by a fresh one on the same slot, so the replacement
// reclaims its predecessor's proxy; a worker ending QUEUED is not replaced
// and the pool shrinks. Replacement is unbounded.
type Supervisor struct {
	factory        WorkerFactory
	proxies        *proxypool.Manager
	store          storage.Storage
	logger         *zap.Logger
	switchInterval time.Duration
	pollInterval   time.Duration

	ctx context.Context
	wg  sync.WaitGroup

	mu       sync.Mutex
	active   int
	respawns int
	queued   int

	doneOnce sync.Once
	done     chan struct{}
}

// Config holds supervisor configuration.
type Config struct {
	Factory WorkerFactory
	Proxies *proxypool.Manager

	// Storage is optional; qualified offers are persisted when set.
	Storage storage.Storage

	// SwitchInterval is how long a proxy group stays active.
	SwitchInterval time.Duration

	// PollInterval is the rotation-check cadence; zero uses the default.
	PollInterval time.Duration

	Logger *zap.Logger
}

// New creates a session supervisor.
func New(cfg *Config) (*Supervisor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("worker factory cannot be nil")
	}
	if cfg.Proxies == nil {
		return nil, fmt.Errorf("proxy manager cannot be nil")
	}
	if cfg.SwitchInterval <= 0 {
		return nil, fmt.Errorf("switch interval must be positive, got %v", cfg.SwitchInterval)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Supervisor{
		factory:        cfg.Factory,
		proxies:        cfg.Proxies,
		store:          cfg.Storage,
		logger:         cfg.Logger,
		switchInterval: cfg.SwitchInterval,
		pollInterval:   pollInterval,
		done:           make(chan struct{}),
	}, nil
}

// Start launches one worker per proxy slot, or a single worker when no
// proxies are configured, plus the group rotation loop.
func (s *Supervisor) Start(ctx context.Context) error {
	s.ctx = ctx

	slots := s.proxies.SlotCount()
	if slots == 0 {
		slots = 1
	}

	s.logger.Info("supervisor-starting", zap.Int("slots", slots))

	s.mu.Lock()
	s.active = slots
	s.mu.Unlock()
	ActiveWorkers.Set(float64(slots))

	for slot := 1; slot <= slots; slot++ {
		s.launch(slot)
	}

	s.wg.Add(1)
	go s.rotationLoop()

	return nil
}

// Stop waits for every worker to reach a terminal outcome. Callers cancel
// the context passed to Start first.
func (s *Supervisor) Stop() {
	s.wg.Wait()
	s.logger.Info("supervisor-stopped")
}

// Done is closed when no workers remain, i.e. every item moved to checkout
// or the pool drained.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) launch(slot int) {
	worker, err := s.factory(slot)
	if err != nil {
		s.logger.Error("worker-build-failed", zap.Int("slot", slot), zap.Error(err))
		s.shrink()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handle(worker.Run(s.ctx))
	}()
}

func (s *Supervisor) handle(result *monitor.Result) {
	switch result.Outcome {
	case monitor.OutcomeFailed:
		if s.ctx.Err() != nil {
			s.shrink()
			return
		}

		s.mu.Lock()
		s.respawns++
		s.mu.Unlock()
		RespawnsTotal.Inc()

		s.logger.Warn("worker-respawning", zap.Int("slot", result.Slot))
		s.launch(result.Slot)

	case monitor.OutcomeQueued:
		s.mu.Lock()
		s.queued++
		s.mu.Unlock()

		if s.store != nil && result.Offer != nil {
			if err := s.store.StoreQualifiedOffer(s.ctx, result.Offer); err != nil {
				s.logger.Error("qualified-offer-store-failed", zap.Error(err))
			}
		}

		s.logger.Info("worker-queued-and-retired", zap.Int("slot", result.Slot))
		s.shrink()

	default:
		s.shrink()
	}
}

func (s *Supervisor) shrink() {
	s.mu.Lock()
	s.active--
	remaining := s.active
	s.mu.Unlock()
	ActiveWorkers.Set(float64(remaining))

	if remaining <= 0 {
		s.logger.Info("monitor-pool-drained")
		s.doneOnce.Do(func() { close(s.done) })
	}
}

func (s *Supervisor) rotationLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.proxies.SwitchIfDue(s.switchInterval)
		}
	}
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	ActiveWorkers int              `json:"active_workers"`
	Respawns      int              `json:"respawns"`
	Queued        int              `json:"queued"`
	Proxies       proxypool.Status `json:"proxies"`
}

// GetStatus returns the current pipeline state.
func (s *Supervisor) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		ActiveWorkers: s.active,
		Respawns:      s.respawns,
		Queued:        s.queued,
		Proxies:       s.proxies.GetStatus(),
	}
}
