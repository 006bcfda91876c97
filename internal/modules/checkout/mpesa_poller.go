package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"checkout-and-tracking/internal/models"
	"checkout-and-tracking/pkg/notify"
)

const notifyTimeout = 5 * time.Second

// Poller reconciles an asynchronous mobile-money payment by querying the
// provider state at a fixed interval for a bounded number of attempts. Polls
// for one order never overlap: each order has at most one live session, and
// starting a new one cancels the previous.
type Poller struct {
	repo        RepositoryInterface
	notifier    notify.Notifier
	interval    time.Duration
	maxAttempts int

	mu     sync.Mutex
	active map[string]*pollSession
}

type pollSession struct {
	cancel context.CancelFunc
}

func NewPoller(repo RepositoryInterface, notifier notify.Notifier, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		repo:        repo,
		notifier:    notifier,
		interval:    interval,
		maxAttempts: maxAttempts,
		active:      make(map[string]*pollSession),
	}
}

// Start begins a poll session for the order. The returned channel delivers
// exactly one terminal outcome and is then closed; if the session is replaced
// or cancelled first, the channel closes without a value.
func (p *Poller) Start(orderID, checkoutRequestID string) <-chan Outcome {
	ctx, cancel := context.WithCancel(context.Background())
	ps := &pollSession{cancel: cancel}

	p.mu.Lock()
	if prev, ok := p.active[orderID]; ok {
		prev.cancel()
	}
	p.active[orderID] = ps
	p.mu.Unlock()

	out := make(chan Outcome, 1)
	go p.run(ctx, ps, orderID, checkoutRequestID, out)
	return out
}

// Cancel tears down the poll session for the order, if any. Used when the
// owning checkout session ends before the payment resolves.
func (p *Poller) Cancel(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ps, ok := p.active[orderID]; ok {
		ps.cancel()
		delete(p.active, orderID)
	}
}

func (p *Poller) run(ctx context.Context, ps *pollSession, orderID, checkoutRequestID string, out chan Outcome) {
	defer close(out)
	defer func() {
		// A replaced session must not evict its replacement.
		p.mu.Lock()
		if p.active[orderID] == ps {
			delete(p.active, orderID)
		}
		p.mu.Unlock()
	}()

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		status, err := p.repo.GetPaymentStatus(ctx, checkoutRequestID)
		if err != nil {
			// Query errors are indistinguishable from "still pending";
			// keep polling until the budget runs out.
			logger.Warn().Err(err).Str("order_id", orderID).Int("attempt", attempt).Msg("payment status query failed")
		} else {
			switch classifyProviderStatus(status) {
			case verdictSuccess:
				p.finish(orderID, Outcome{Kind: OutcomeSuccess, Message: "Payment received"}, out)
				return
			case verdictFailure:
				p.finish(orderID, Outcome{Kind: OutcomeFailure, Message: "payment failed or was cancelled"}, out)
				return
			}
		}

		timer.Reset(p.interval)
	}

	// Budget exhausted without a definitive answer. Absence of confirmation
	// is never confirmation.
	p.finish(orderID, Outcome{Kind: OutcomeFailure, Message: models.ErrPaymentNotVerified.Error()}, out)
}

// finish emits the single terminal outcome and its notification.
func (p *Poller) finish(orderID string, outcome Outcome, out chan Outcome) {
	out <- outcome

	title := "Payment confirmed"
	if outcome.Kind == OutcomeFailure {
		title = "Payment failed"
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := p.notifier.Notify(ctx, notify.NewNotification(title, outcome.Message, orderID)); err != nil {
		logger.Warn().Err(err).Str("order_id", orderID).Msg("poll notification failed")
	}
}

type verdict int

const (
	verdictPending verdict = iota
	verdictSuccess
	verdictFailure
)

// classifyProviderStatus maps the provider's status vocabulary onto a
// verdict. Unknown strings mean the provider has not decided yet.
func classifyProviderStatus(status string) verdict {
	switch strings.ToUpper(status) {
	case "COMPLETED", "SUCCESS":
		return verdictSuccess
	case "FAILED", "CANCELLED":
		return verdictFailure
	default:
		return verdictPending
	}
}
