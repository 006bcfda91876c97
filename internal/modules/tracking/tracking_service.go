package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"checkout-and-tracking/internal/models"
	"checkout-and-tracking/internal/realtime"
	"checkout-and-tracking/pkg/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ServiceInterface defines the contract for the tracking service.
type ServiceInterface interface {
	Track(ctx context.Context, orderID string) (*Session, error)
	View(orderID string) (models.TrackingView, bool)
	Stop(orderID string)
}

// Service owns live tracking sessions, at most one per order. Re-tracking an
// order replaces its session; because the timeline is re-derived from the
// fetched order and the event history, resubscription is idempotent.
type Service struct {
	repo     RepositoryInterface
	stream   realtime.Stream
	notifier notify.Notifier

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a new tracking service.
func NewService(repo RepositoryInterface, stream realtime.Stream, notifier notify.Notifier) *Service {
	return &Service{
		repo:     repo,
		stream:   stream,
		notifier: notifier,
		sessions: make(map[string]*Session),
	}
}

// Session is one live tracking subscription. A single consumer goroutine is
// the only writer of the view; readers get copies.
type Session struct {
	ID      string
	OrderID string

	cancel  context.CancelFunc
	mu      sync.RWMutex
	view    models.TrackingView
	updates chan models.TrackingView
	done    chan struct{}
}

// View returns the current reconciled view.
func (s *Session) View() models.TrackingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Updates delivers view snapshots as events arrive. Slow consumers miss
// intermediate snapshots, never the latest state — View() always has it.
func (s *Session) Updates() <-chan models.TrackingView {
	return s.updates
}

// Done closes when the session has fully stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stop cancels both stream subscriptions together.
func (s *Session) Stop() {
	s.cancel()
}

func (s *Session) publish(v models.TrackingView) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	select {
	case s.updates <- v:
	default:
	}
}

// Track starts (or restarts) tracking for the order. The initial fetch and
// the subscriptions are all-or-nothing: on any failure the error is returned
// for the caller to retry manually — there is no automatic re-subscribe.
func (s *Service) Track(ctx context.Context, orderID string) (*Session, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Track: %w", err)
	}

	// The session outlives the request that started it; it ends on Stop or
	// on a terminal status.
	sessCtx, cancel := context.WithCancel(context.Background())

	orderCh, err := s.stream.Subscribe(sessCtx, realtime.OrderTopic(orderID))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("service.Track: %w", err)
	}
	riderCh, err := s.stream.Subscribe(sessCtx, realtime.RiderTopic(orderID))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("service.Track: %w", err)
	}

	state := newSessionState(orderID)
	state = applyOrderUpdate(state, *order)

	sess := &Session{
		ID:      uuid.NewString(),
		OrderID: orderID,
		cancel:  cancel,
		view:    renderView(state),
		updates: make(chan models.TrackingView, 8),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.sessions[orderID]; ok {
		prev.Stop()
	}
	s.sessions[orderID] = sess
	s.mu.Unlock()

	go s.consume(sessCtx, sess, state, orderCh, riderCh)
	return sess, nil
}

// consume is the single writer of the session view. It folds both event
// streams through the pure reducers and re-renders the whole view per event.
func (s *Service) consume(ctx context.Context, sess *Session, state sessionState, orderCh, riderCh <-chan []byte) {
	defer close(sess.done)
	defer s.remove(sess)

	// An order fetched already terminal has nothing left to stream.
	initial := renderView(state)
	if initial.Delivered || initial.Cancelled {
		sess.Stop()
		return
	}
	deliveredSignalled := false

	for {
		select {
		case <-ctx.Done():
			return

		case body, ok := <-orderCh:
			if !ok {
				// Transport dropped; the caller restarts tracking manually.
				return
			}
			var o models.Order
			if err := json.Unmarshal(body, &o); err != nil {
				logger.Warn().Err(err).Str("order_id", sess.OrderID).Msg("bad order update payload")
				continue
			}
			state = applyOrderUpdate(state, o)
			view := renderView(state)
			sess.publish(view)

			// The delivered signal fires once, no matter how many DELIVERED
			// snapshots follow.
			if view.Delivered && !deliveredSignalled {
				deliveredSignalled = true
				s.notifyTerminal(sess.OrderID, "Order delivered", "Your order has arrived. Enjoy!")
			}
			if view.Cancelled {
				s.notifyTerminal(sess.OrderID, "Order cancelled", "Your order was cancelled.")
			}
			if view.Delivered || view.Cancelled {
				sess.Stop()
				return
			}

		case body, ok := <-riderCh:
			if !ok {
				return
			}
			var loc models.CourierLocation
			if err := json.Unmarshal(body, &loc); err != nil {
				logger.Warn().Err(err).Str("order_id", sess.OrderID).Msg("bad rider location payload")
				continue
			}
			state = applyLocation(state, loc)
			sess.publish(renderView(state))
		}
	}
}

// View returns the reconciled view for an order with a live session.
func (s *Service) View(orderID string) (models.TrackingView, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[orderID]
	s.mu.Unlock()
	if !ok {
		return models.TrackingView{}, false
	}
	return sess.View(), true
}

// Stop tears down the order's session, if any.
func (s *Service) Stop(orderID string) {
	s.mu.Lock()
	sess, ok := s.sessions[orderID]
	s.mu.Unlock()
	if ok {
		sess.Stop()
	}
}

func (s *Service) remove(sess *Session) {
	s.mu.Lock()
	if current, ok := s.sessions[sess.OrderID]; ok && current == sess {
		delete(s.sessions, sess.OrderID)
	}
	s.mu.Unlock()
}

func (s *Service) notifyTerminal(orderID, title, message string) {
	go func() {
		if err := s.notifier.Notify(context.Background(), notify.NewNotification(title, message, orderID)); err != nil {
			logger.Warn().Err(err).Str("order_id", orderID).Msg("tracking notification failed")
		}
	}()
}
