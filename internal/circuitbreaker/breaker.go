package circuitbreaker

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// TransportErrorStatus is the sentinel status recorded when a cycle failed
// without a usable HTTP status: connect errors, timeouts, undecodable
// response bodies, and CAPTCHA challenges that went unsolved. It always
// counts as a failure regardless of the configured fail-status set.
const TransportErrorStatus = 0

// Tripped is returned by Record once the consecutive-failure threshold is
// reached. The worker that owns the counter must exit and request
// replacement; the counter itself never terminates the pipeline.
const Tripped = -1

// FailureCounter tracks consecutive failing responses for a single monitor
// worker. Each worker owns exactly one counter; no worker ever touches
// another worker's counter.
type FailureCounter struct {
	threshold    int
	failStatuses map[int]struct{}
	logger       *zap.Logger

	mu     sync.Mutex
	streak int
}

// Config holds failure counter configuration.
type Config struct {
	// Threshold is the number of consecutive failures that trips the
	// counter. Default behavior expects 5.
	Threshold int

	// FailStatuses is the set of HTTP statuses counted as failures,
	// e.g. 503. TransportErrorStatus is always included.
	FailStatuses []int

	Logger *zap.Logger
}

// New creates a new failure counter with the given configuration.
func New(cfg *Config) (*FailureCounter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive")
	}

	failStatuses := make(map[int]struct{}, len(cfg.FailStatuses)+1)
	failStatuses[TransportErrorStatus] = struct{}{}
	for _, s := range cfg.FailStatuses {
		failStatuses[s] = struct{}{}
	}

	return &FailureCounter{
		threshold:    cfg.Threshold,
		failStatuses: failStatuses,
		logger:       cfg.Logger,
	}, nil
}

// Record feeds one response status into the counter. It returns Tripped once
// the threshold is reached, otherwise the current streak. Any non-failing
// status resets the streak to zero.
func (f *FailureCounter) Record(status int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, failing := f.failStatuses[status]; !failing {
		if f.streak > 0 {
			f.logger.Debug("failure-streak-reset",
				zap.Int("status", status),
				zap.Int("previous_streak", f.streak))
		}
		f.streak = 0
		return f.streak
	}

	f.streak++
	FailuresRecordedTotal.Inc()

	if f.streak >= f.threshold {
		CountersTrippedTotal.Inc()
		f.logger.Warn("failure-counter-tripped",
			zap.Int("status", status),
			zap.Int("threshold", f.threshold))
		return Tripped
	}

	f.logger.Debug("failure-recorded",
		zap.Int("status", status),
		zap.Int("streak", f.streak),
		zap.Int("threshold", f.threshold))

	return f.streak
}

// IsFailStatus reports whether a status belongs to the fail set. Used by
// workers to decide whether to mark their proxy bad.
func (f *FailureCounter) IsFailStatus(status int) bool {
	_, failing := f.failStatuses[status]
	return failing
}

// Streak returns the current consecutive-failure count.
func (f *FailureCounter) Streak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streak
}
