package checkout

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/internal/captcha"
	"github.com/mselser95/restock-sniper/internal/items"
	"github.com/mselser95/restock-sniper/internal/notify"
	"github.com/mselser95/restock-sniper/internal/storage"
	"github.com/mselser95/restock-sniper/pkg/httpclient"
	"github.com/mselser95/restock-sniper/pkg/types"
)

// Known fragments of the reserve response. The endpoints are not a stable
// API, so extraction is pattern matching rather than full parsing.
var (
	purchaseIDPattern = regexp.MustCompile(`name="purchaseId"\s+value="([^"]+)"`)
	csrfTokenPattern  = regexp.MustCompile(`name="anti-csrftoken-a2z"\s+value="([^"]+)"`)
	captchaImgPattern = regexp.MustCompile(`<img[^>]+src="([^"]*captcha[^"]*)"`)
)

const (
	captchaMarker      = "validateCaptcha"
	captchaAnswerField = "field-keywords"
	csrfTokenHeader    = "anti-csrftoken-a2z"
)

// Fetcher is the slice of the HTTP client the worker needs.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
	PostForm(ctx context.Context, url string, form url.Values, headers map[string]string) (*httpclient.Response, error)
}

// Worker is the single checkout consumer. It drains qualified offers in
// arrival order and runs one purchase attempt at a time: reserve the listing
// to obtain a purchase id and anti-forgery token, then commit.
type Worker struct {
	in      <-chan *types.QualifiedOffer
	client  Fetcher
	solver  captcha.Solver
	store   storage.Storage
	sink    notify.Sink
	items   *items.Pool
	logger  *zap.Logger
	ctx     context.Context
	wg      sync.WaitGroup

	baseURL        string
	reservePath    string
	commitPath     string
	captchaRetries int
	stopAfterFirst bool

	doneOnce sync.Once
	done     chan struct{}
}

// Config holds checkout worker configuration.
type Config struct {
	In     <-chan *types.QualifiedOffer
	Client Fetcher
	Solver captcha.Solver

	// Storage and Sink are optional; results are always logged.
	Storage storage.Storage
	Sink    notify.Sink

	// Items is the monitored item pool; a committed purchase removes its
	// item so no other worker keeps chasing it.
	Items *items.Pool

	BaseURL     string
	ReservePath string
	CommitPath  string

	// CaptchaRetries bounds reserve-phase challenge solving.
	CaptchaRetries int

	// StopAfterFirst makes the worker stop consuming after the first
	// committed purchase; Done() is closed so the app can drain.
	StopAfterFirst bool

	Logger *zap.Logger
}

// New creates a checkout worker.
func New(cfg *Config) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.In == nil {
		return nil, fmt.Errorf("input channel cannot be nil")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if cfg.Items == nil {
		return nil, fmt.Errorf("item pool cannot be nil")
	}
	if cfg.CaptchaRetries <= 0 {
		return nil, fmt.Errorf("captcha retries must be positive, got %d", cfg.CaptchaRetries)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Worker{
		in:             cfg.In,
		client:         cfg.Client,
		solver:         cfg.Solver,
		store:          cfg.Storage,
		sink:           cfg.Sink,
		items:          cfg.Items,
		baseURL:        cfg.BaseURL,
		reservePath:    cfg.ReservePath,
		commitPath:     cfg.CommitPath,
		captchaRetries: cfg.CaptchaRetries,
		stopAfterFirst: cfg.StopAfterFirst,
		logger:         cfg.Logger,
		done:           make(chan struct{}),
	}, nil
}

// Start starts the checkout consumer loop.
func (w *Worker) Start(ctx context.Context) error {
	w.ctx = ctx
	w.logger.Info("checkout-worker-starting",
		zap.Bool("stop-after-first", w.stopAfterFirst))

	w.wg.Add(1)
	go w.consumeLoop()

	return nil
}

// Stop waits for the in-flight attempt to finish.
func (w *Worker) Stop() {
	w.wg.Wait()
	w.logger.Info("checkout-worker-stopped")
}

// Done is closed after the first committed purchase when the worker is
// configured to stop there.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("checkout-worker-stopping")
			return
		case offer, ok := <-w.in:
			if !ok {
				w.logger.Info("checkout-queue-closed")
				return
			}

			result := w.Process(w.ctx, offer)
			w.report(result)

			if result.Outcome == types.CheckoutCommitted {
				w.items.Remove(result.ItemID)
				if w.stopAfterFirst {
					w.doneOnce.Do(func() { close(w.done) })
					return
				}
			}
		}
	}
}

// Process runs one purchase attempt end to end and reports the tri-state
// outcome. The commit endpoint answers 500 for purchases that sometimes
// still settle, so 500 maps to Unconfirmed, never Failed.
func (w *Worker) Process(ctx context.Context, offer *types.QualifiedOffer) *types.CheckoutResult {
	result := &types.CheckoutResult{
		OfferID:   offer.ID,
		ItemID:    offer.ItemID,
		ListingID: offer.ListingID,
	}

	AttemptsTotal.Inc()
	start := time.Now()

	purchaseID, token, err := w.reserve(ctx, offer.ListingID)
	if err != nil {
		result.Outcome = types.CheckoutFailed
		result.Err = err
		result.ExecutedAt = time.Now()
		result.Latency = time.Since(offer.DiscoveredAt)
		return result
	}

	result.PurchaseID = purchaseID

	status, err := w.commit(ctx, purchaseID, token)
	result.StatusCode = status
	result.ExecutedAt = time.Now()
	result.Latency = time.Since(offer.DiscoveredAt)

	switch {
	case err != nil:
		result.Outcome = types.CheckoutFailed
		result.Err = err
	case status >= 200 && status < 300:
		result.Outcome = types.CheckoutCommitted
	case status == 500:
		result.Outcome = types.CheckoutUnconfirmed
	default:
		result.Outcome = types.CheckoutFailed
		result.Err = &types.CheckoutError{
			Code:      types.ErrCommitRejected,
			Message:   fmt.Sprintf("commit returned status %d", status),
			Phase:     "commit",
			ListingID: offer.ListingID,
		}
	}

	PhaseDurationSeconds.Observe(time.Since(start).Seconds())

	return result
}

// reserve runs phase one: POST the listing id, solve any CAPTCHA challenge
// in the response (bounded), and extract the purchase id plus anti-forgery
// token.
func (w *Worker) reserve(ctx context.Context, listingID string) (purchaseID, token string, err error) {
	form := url.Values{}
	form.Set("offerListingID", listingID)
	form.Set("quantity", "1")

	for attempt := 0; attempt < w.captchaRetries; attempt++ {
		resp, err := w.client.PostForm(ctx, w.baseURL+w.reservePath, form, httpclient.BrowserHeaders())
		if err != nil {
			return "", "", fmt.Errorf("reserve request: %w", err)
		}

		body := string(resp.Body)

		if strings.Contains(body, captchaMarker) {
			CaptchaChallengesTotal.Inc()

			answer, solveErr := w.solveReserveChallenge(ctx, body)
			if solveErr != nil {
				w.logger.Warn("checkout-captcha-unsolved",
					zap.Int("attempt", attempt+1),
					zap.Error(solveErr))
				continue
			}

			form.Set(captchaAnswerField, answer)
			continue
		}

		purchaseID = firstMatch(purchaseIDPattern, body)
		token = firstMatch(csrfTokenPattern, body)
		if purchaseID == "" || token == "" {
			return "", "", &types.CheckoutError{
				Code:      types.ErrReserveTokenMissing,
				Message:   "purchase id or anti-forgery token missing from reserve response",
				Phase:     "reserve",
				ListingID: listingID,
			}
		}

		return purchaseID, token, nil
	}

	return "", "", &types.CheckoutError{
		Code:      types.ErrCaptchaUnsolved,
		Message:   fmt.Sprintf("challenge still unsolved after %d attempts", w.captchaRetries),
		Phase:     "reserve",
		ListingID: listingID,
	}
}

func (w *Worker) solveReserveChallenge(ctx context.Context, body string) (string, error) {
	if w.solver == nil {
		return "", fmt.Errorf("no captcha solver configured")
	}

	imageURL := firstMatch(captchaImgPattern, body)
	if imageURL == "" {
		return "", fmt.Errorf("challenge page without image link")
	}

	answer, err := w.solver.Solve(ctx, imageURL)
	if err != nil {
		return "", err
	}
	if answer == captcha.NotSolved {
		return "", fmt.Errorf("solver could not read the challenge")
	}

	return answer, nil
}

// commit runs phase two: the purchase id rides the query string and the
// anti-forgery token a header.
func (w *Worker) commit(ctx context.Context, purchaseID, token string) (int, error) {
	query := url.Values{}
	query.Set("purchaseId", purchaseID)

	headers := httpclient.BrowserHeaders()
	headers[csrfTokenHeader] = token

	resp, err := w.client.PostForm(ctx, w.baseURL+w.commitPath+"?"+query.Encode(), url.Values{}, headers)
	if err != nil {
		return 0, fmt.Errorf("commit request: %w", err)
	}

	return resp.StatusCode, nil
}

func (w *Worker) report(result *types.CheckoutResult) {
	switch result.Outcome {
	case types.CheckoutCommitted:
		PurchasesTotal.WithLabelValues("committed").Inc()
		w.logger.Info("purchase-committed",
			zap.String("item_id", result.ItemID),
			zap.String("purchase_id", result.PurchaseID),
			zap.Duration("latency", result.Latency))
	case types.CheckoutUnconfirmed:
		PurchasesTotal.WithLabelValues("unconfirmed").Inc()
		w.logger.Warn("purchase-unconfirmed",
			zap.String("item_id", result.ItemID),
			zap.String("purchase_id", result.PurchaseID),
			zap.Int("status", result.StatusCode))
	default:
		PurchasesTotal.WithLabelValues("failed").Inc()
		w.logger.Error("purchase-failed",
			zap.String("item_id", result.ItemID),
			zap.Error(result.Err))
	}

	if w.store != nil {
		if err := w.store.StorePurchase(w.ctx, result); err != nil {
			w.logger.Error("purchase-store-failed", zap.Error(err))
		}
	}

	if w.sink != nil && result.Outcome != types.CheckoutFailed {
		message := fmt.Sprintf("%s purchase for %s (status %d, %s)",
			result.Outcome, result.ItemID, result.StatusCode, result.Latency.Round(time.Millisecond))
		listingURL := w.baseURL + "/gp/offer-listing/" + result.ItemID
		if err := w.sink.Send(w.ctx, message, listingURL); err != nil {
			w.logger.Error("notification-failed", zap.Error(err))
		}
	}
}

func firstMatch(pattern *regexp.Regexp, body string) string {
	m := pattern.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}

	return m[1]
}
