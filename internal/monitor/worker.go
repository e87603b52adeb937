package monitor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/captcha"
	"github.com/mselser95/restock-sniper/internal/circuitbreaker"
	"github.com/mselser95/restock-sniper/internal/items"
	"github.com/mselser95/restock-sniper/internal/offercache"
	"github.com/mselser95/restock-sniper/internal/parse"
	"github.com/mselser95/restock-sniper/internal/proxypool"
	"github.com/mselser95/restock-sniper/internal/qualify"
	"github.com/mselser95/restock-sniper/internal/queue"
	"github.com/mselser95/restock-sniper/internal/session"
	"github.com/mselser95/restock-sniper/pkg/httpclient"
	"github.com/mselser95/restock-sniper/pkg/types"
)

const (
	// claimBackoff is the wait before re-reading the active group after a
	// claim raced a rotation.
	claimBackoff = 500 * time.Millisecond

	// sessionRetryDelay spaces out session validation attempts.
	sessionRetryDelay = time.Second
)

// Outcome is how a worker run ended.
type Outcome int

const (
	// OutcomeStopped means the context was cancelled or the item pool
	// drained; the worker is not replaced.
	OutcomeStopped Outcome = iota

	// OutcomeQueued means a qualified offer was handed to checkout; the
	// worker exits and the pool shrinks.
	OutcomeQueued

	// OutcomeFailed means the failure threshold tripped or the session
	// could not be established; the supervisor spawns a replacement bound
	// to the same proxy slot.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeQueued:
		return "queued"
	case OutcomeFailed:
		return "failed"
	default:
		return "stopped"
	}
}

// Result is a worker's terminal report to the supervisor.
type Result struct {
	Slot    int
	Outcome Outcome

	// Offer is set when Outcome is OutcomeQueued.
	Offer *types.QualifiedOffer
}

// Fetcher is the slice of the HTTP client a worker needs.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
	PostForm(ctx context.Context, url string, form url.Values, headers map[string]string) (*httpclient.Response, error)
}

// ClientFactory builds a client bound to a proxy. Workers rebuild their
// client whenever the proxy group rotates under them.
type ClientFactory func(proxyURL string) (Fetcher, error)

// SessionValidator establishes that a client carries a usable session.
type SessionValidator interface {
	Validate(ctx context.Context, client session.Fetcher) error
}

// Worker polls items round-robin through one claimed proxy, qualifies any
// offers it finds and hands the first match to the checkout queue. It runs
// the cycle VALIDATING_SESSION, FETCHING, PARSING, CAPTCHA_SOLVING when
// challenged, EVALUATING, WAITING, and terminates queued, failed or stopped.
type Worker struct {
	slot      int
	items     *items.Pool
	proxies   *proxypool.Manager
	offers    *offercache.Source
	qualifier *qualify.Qualifier
	queue     *queue.CheckoutQueue
	breaker   *circuitbreaker.FailureCounter
	solver    captcha.Solver
	session   SessionValidator
	clients   ClientFactory
	logger    *zap.Logger

	baseURL            string
	listingPath        string
	offerJSONPath      string
	interval           time.Duration
	sessionMaxAttempts int
}

// Config holds worker configuration.
type Config struct {
	Slot      int
	Items     *items.Pool
	Proxies   *proxypool.Manager
	Offers    *offercache.Source
	Qualifier *qualify.Qualifier
	Queue     *queue.CheckoutQueue
	Breaker   *circuitbreaker.FailureCounter
	Solver    captcha.Solver
	Session   SessionValidator
	Clients   ClientFactory

	// BaseURL plus ListingPath (with an item id placeholder) form the
	// listing page URL; OfferJSONPath is the known-listing-id fast path.
	BaseURL       string
	ListingPath   string
	OfferJSONPath string

	// Interval is the polling cadence, measured from cycle start.
	Interval time.Duration

	// SessionMaxAttempts caps session validation before the worker gives
	// up and requests replacement.
	SessionMaxAttempts int

	Logger *zap.Logger
}

// New creates a monitor worker.
func New(cfg *Config) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Items == nil {
		return nil, fmt.Errorf("item pool cannot be nil")
	}
	if cfg.Proxies == nil {
		return nil, fmt.Errorf("proxy manager cannot be nil")
	}
	if cfg.Offers == nil {
		return nil, fmt.Errorf("offer id source cannot be nil")
	}
	if cfg.Qualifier == nil {
		return nil, fmt.Errorf("qualifier cannot be nil")
	}
	if cfg.Queue == nil {
		return nil, fmt.Errorf("queue cannot be nil")
	}
	if cfg.Breaker == nil {
		return nil, fmt.Errorf("failure counter cannot be nil")
	}
	if cfg.Clients == nil {
		return nil, fmt.Errorf("client factory cannot be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.SessionMaxAttempts <= 0 {
		return nil, fmt.Errorf("session max attempts must be positive, got %d", cfg.SessionMaxAttempts)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Worker{
		slot:               cfg.Slot,
		items:              cfg.Items,
		proxies:            cfg.Proxies,
		offers:             cfg.Offers,
		qualifier:          cfg.Qualifier,
		queue:              cfg.Queue,
		breaker:            cfg.Breaker,
		solver:             cfg.Solver,
		session:            cfg.Session,
		clients:            cfg.Clients,
		baseURL:            cfg.BaseURL,
		listingPath:        cfg.ListingPath,
		offerJSONPath:      cfg.OfferJSONPath,
		interval:           cfg.Interval,
		sessionMaxAttempts: cfg.SessionMaxAttempts,
		logger:             cfg.Logger.With(zap.Int("slot", cfg.Slot)),
	}, nil
}

// Slot returns the proxy slot this worker is bound to.
func (w *Worker) Slot() int {
	return w.slot
}

// Run drives the worker until a terminal outcome. It is the supervisor's
// job to act on the result; Run itself never respawns anything.
func (w *Worker) Run(ctx context.Context) *Result {
	result := &Result{Slot: w.slot}

	var client Fetcher
	var proxyURL string
	var group int

	for {
		if ctx.Err() != nil {
			result.Outcome = OutcomeStopped
			return result
		}

		proxy, currentGroup := w.proxies.ProxyFor(w.slot)
		if currentGroup != 0 && proxy == "" {
			// The active group is smaller than the slot table; idle
			// until rotation brings a group with a proxy for this slot.
			if !w.sleep(ctx, claimBackoff) {
				result.Outcome = OutcomeStopped
				return result
			}
			continue
		}

		if client == nil || proxy != proxyURL || currentGroup != group {
			if proxy != "" && !w.proxies.Claim(proxy, currentGroup, w.slot) {
				// Lost the race against a rotation; re-read the group.
				if !w.sleep(ctx, claimBackoff) {
					result.Outcome = OutcomeStopped
					return result
				}
				continue
			}

			c, err := w.clients(proxy)
			if err != nil {
				w.logger.Error("client-build-failed", zap.Error(err))
				result.Outcome = OutcomeFailed
				return result
			}

			if !w.validateSession(ctx, c) {
				if ctx.Err() != nil {
					result.Outcome = OutcomeStopped
				} else {
					result.Outcome = OutcomeFailed
				}
				return result
			}

			client, proxyURL, group = c, proxy, currentGroup
		}

		cycleStart := time.Now()

		item := w.items.Next()
		if item == nil {
			w.logger.Info("item-pool-drained")
			result.Outcome = OutcomeStopped
			return result
		}

		CyclesTotal.Inc()

		outcome, offer := w.checkItem(ctx, client, proxyURL, item)
		switch outcome {
		case cycleQueued:
			result.Outcome = OutcomeQueued
			result.Offer = offer
			return result
		case cycleTripped:
			w.logger.Warn("failure-threshold-tripped",
				zap.String("item_id", item.ID),
				zap.String("proxy", proxyURL))
			result.Outcome = OutcomeFailed
			return result
		}

		if !w.sleep(ctx, w.interval-time.Since(cycleStart)) {
			result.Outcome = OutcomeStopped
			return result
		}
	}
}

// validateSession retries the session probe up to the attempt cap.
func (w *Worker) validateSession(ctx context.Context, client Fetcher) bool {
	if w.session == nil {
		return true
	}

	for attempt := 1; attempt <= w.sessionMaxAttempts; attempt++ {
		SessionValidationsTotal.Inc()

		err := w.session.Validate(ctx, client)
		if err == nil {
			return true
		}

		w.logger.Warn("session-validation-failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < w.sessionMaxAttempts && !w.sleep(ctx, sessionRetryDelay) {
			return false
		}
	}

	return false
}

type cycleOutcome int

const (
	cycleContinue cycleOutcome = iota
	cycleQueued
	cycleTripped
)

// checkItem runs one FETCHING..EVALUATING pass for one item.
func (w *Worker) checkItem(ctx context.Context, client Fetcher, proxy string, item *types.MonitoredItem) (cycleOutcome, *types.QualifiedOffer) {
	// Fast path: a listing id observed earlier lets us hit the stock
	// endpoint instead of parsing the full page.
	if listingID, ok := w.offers.Next(item.ID); ok {
		return w.checkKnownListing(ctx, client, proxy, item, listingID)
	}

	return w.checkListingPage(ctx, client, proxy, item)
}

func (w *Worker) checkKnownListing(ctx context.Context, client Fetcher, proxy string, item *types.MonitoredItem, listingID string) (cycleOutcome, *types.QualifiedOffer) {
	StockChecksTotal.WithLabelValues("offer-json").Inc()

	query := url.Values{}
	query.Set("asin", item.ID)
	query.Set("offerListingId", listingID)

	resp, err := client.Get(ctx, w.baseURL+w.offerJSONPath+"?"+query.Encode(), httpclient.BrowserHeaders())
	if err != nil {
		if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
			return cycleTripped, nil
		}
		return cycleContinue, nil
	}

	if w.recordStatus(item, proxy, resp.StatusCode) {
		return cycleTripped, nil
	}
	if resp.StatusCode != 200 {
		return cycleContinue, nil
	}

	inStock, listingIDs, err := parse.OfferJSON(resp.Body)
	if err != nil {
		if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
			return cycleTripped, nil
		}
		return cycleContinue, nil
	}

	if !inStock {
		return cycleContinue, nil
	}

	w.offers.Record(item.ID, listingIDs)

	return w.emit(item, listingIDs[0])
}

func (w *Worker) checkListingPage(ctx context.Context, client Fetcher, proxy string, item *types.MonitoredItem) (cycleOutcome, *types.QualifiedOffer) {
	StockChecksTotal.WithLabelValues("listing").Inc()

	resp, err := client.Get(ctx, w.baseURL+fmt.Sprintf(w.listingPath, item.ID), httpclient.BrowserHeaders())
	if err != nil {
		if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
			return cycleTripped, nil
		}
		return cycleContinue, nil
	}

	if w.recordStatus(item, proxy, resp.StatusCode) {
		return cycleTripped, nil
	}
	if resp.StatusCode != 200 {
		return cycleContinue, nil
	}

	parsed, err := parse.Listing(resp.Body)
	if err != nil {
		if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
			return cycleTripped, nil
		}
		return cycleContinue, nil
	}

	if parsed.Captcha != nil {
		parsed, err = w.solveChallenge(ctx, client, parsed.Captcha)
		if err != nil {
			w.logger.Warn("captcha-unsolved", zap.String("item_id", item.ID), zap.Error(err))
			if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
				return cycleTripped, nil
			}
			return cycleContinue, nil
		}
		if parsed.Captcha != nil {
			// Challenged again right after solving; charge it like an
			// unsolved one.
			if w.recordStatus(item, proxy, circuitbreaker.TransportErrorStatus) {
				return cycleTripped, nil
			}
			return cycleContinue, nil
		}
	}

	// A cached or stale page for a different product is skipped without
	// charging a failure.
	if parsed.ProductID != "" && parsed.ProductID != item.ID {
		StalePagesTotal.Inc()
		w.logger.Debug("stale-page-skipped",
			zap.String("item_id", item.ID),
			zap.String("page_product_id", parsed.ProductID))
		return cycleContinue, nil
	}

	offer, ok := w.qualifier.Qualify(item, parsed.Offers)
	if !ok {
		return cycleContinue, nil
	}

	// Only a listing id that cleared qualification enters the fast-path
	// cache; everything the stock endpoint serves for it skips the
	// qualifier on later cycles.
	if offer.ListingID != "" {
		w.offers.Record(item.ID, []string{offer.ListingID})
	}

	return w.emit(item, offer.ListingID)
}

// solveChallenge resolves a CAPTCHA via the external solver and resubmits
// the form, returning the parse of the effective response.
func (w *Worker) solveChallenge(ctx context.Context, client Fetcher, challenge *parse.Challenge) (*parse.Result, error) {
	if w.solver == nil {
		return nil, fmt.Errorf("no captcha solver configured")
	}

	CaptchaChallengesTotal.Inc()

	text, err := w.solver.Solve(ctx, challenge.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("solve captcha: %w", err)
	}
	if text == captcha.NotSolved {
		return nil, fmt.Errorf("captcha solver could not read the challenge")
	}

	form := url.Values{}
	for name, value := range challenge.Fields {
		form.Set(name, value)
	}
	form.Set(challenge.TextField, text)

	action := challenge.FormAction
	if strings.HasPrefix(action, "/") {
		action = w.baseURL + action
	}

	resp, err := client.Get(ctx, action+"?"+form.Encode(), httpclient.BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("resubmit captcha form: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("captcha resubmission returned status %d", resp.StatusCode)
	}

	CaptchasSolvedTotal.Inc()

	return parse.Listing(resp.Body)
}

// emit enqueues a qualified offer unless the item's purchase delay has not
// elapsed since the offer was first seen.
func (w *Worker) emit(item *types.MonitoredItem, listingID string) (cycleOutcome, *types.QualifiedOffer) {
	now := time.Now()
	firstSeen := item.MarkQualified(now)
	if wait := item.PurchaseDelay.Std(); now.Sub(firstSeen) < wait {
		w.logger.Info("purchase-delay-pending",
			zap.String("item_id", item.ID),
			zap.Duration("remaining", wait-now.Sub(firstSeen)))
		return cycleContinue, nil
	}

	qualified := types.NewQualifiedOffer(item.ID, listingID)
	if !w.queue.Enqueue(qualified) {
		return cycleContinue, nil
	}

	OffersQueuedTotal.Inc()
	w.logger.Info("offer-queued",
		zap.String("item_id", item.ID),
		zap.String("listing_id", listingID))

	return cycleQueued, qualified
}

// recordStatus routes a response status through the item, the proxy
// bookkeeping and the failure counter. It returns true when the counter
// tripped.
func (w *Worker) recordStatus(item *types.MonitoredItem, proxy string, status int) bool {
	item.SetLastStatus(status)

	if proxy != "" {
		if w.breaker.IsFailStatus(status) {
			w.proxies.RecordFailure(proxy, status)
		} else {
			w.proxies.RecordSuccess(proxy, status)
		}
	}

	return w.breaker.Record(status) == circuitbreaker.Tripped
}

// sleep waits for d unless the context ends first. Non-positive d returns
// immediately.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
